// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"testing"
)

func TestGetCompanyInfo_AbsentRowIsEmptyBlock(t *testing.T) {
	_, h := testSetup(t)

	w := executeHandler(t, h.GetCompanyInfo, newGetRequest(t, "/api/company-info/about", map[string]string{"type": "about"}))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 even without a row, got %d", w.Code)
	}
	info := unmarshalData[CompanyInfoResponse](t, w)
	if info.Type != "about" || info.Content != "" {
		t.Errorf("expected empty about block, got %+v", info)
	}
	if info.UpdatedAt != nil {
		t.Error("placeholder block should have no timestamp")
	}
}

func TestGetCompanyInfo_InvalidType(t *testing.T) {
	_, h := testSetup(t)

	w := executeHandler(t, h.GetCompanyInfo, newGetRequest(t, "/api/company-info/legal", map[string]string{"type": "legal"}))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestUpdateCompanyInfo_Upsert(t *testing.T) {
	_, h := testSetup(t)
	params := map[string]string{"type": "contact"}

	w := executeHandler(t, h.UpdateCompanyInfo,
		newJSONRequest(t, http.MethodPut, "/api/company-info/contact", `{"content":"# Reach us"}`, params))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Second write replaces, not duplicates.
	w = executeHandler(t, h.UpdateCompanyInfo,
		newJSONRequest(t, http.MethodPut, "/api/company-info/contact", `{"content":"updated"}`, params))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = executeHandler(t, h.GetCompanyInfo, newGetRequest(t, "/api/company-info/contact", params))
	info := unmarshalData[CompanyInfoResponse](t, w)
	if info.Content != "updated" {
		t.Errorf("expected updated content, got %q", info.Content)
	}
	if info.UpdatedAt == nil {
		t.Error("expected timestamp on stored block")
	}
}

func TestUpdateCompanyInfo_InvalidatesCache(t *testing.T) {
	_, h := testSetup(t)
	params := map[string]string{"type": "about"}

	// Prime the cache with the empty placeholder.
	executeHandler(t, h.GetCompanyInfo, newGetRequest(t, "/api/company-info/about", params))

	executeHandler(t, h.UpdateCompanyInfo,
		newJSONRequest(t, http.MethodPut, "/api/company-info/about", `{"content":"fresh"}`, params))

	w := executeHandler(t, h.GetCompanyInfo, newGetRequest(t, "/api/company-info/about", params))
	info := unmarshalData[CompanyInfoResponse](t, w)
	if info.Content != "fresh" {
		t.Errorf("stale cache served after update: %q", info.Content)
	}
	if info.ContentHTML == "" {
		t.Error("expected rendered content_html")
	}
}
