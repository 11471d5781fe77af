// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package geoip

import "testing"

func TestLookup_Uninitialized(t *testing.T) {
	g := NewLookup()
	if got := g.LookupCountry("8.8.8.8"); got != "" {
		t.Errorf("LookupCountry = %q before Init, want empty", got)
	}
}

func TestLookup_DisabledWithoutDatabase(t *testing.T) {
	g := NewLookup()
	if err := g.Init(""); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if g.IsEnabled() {
		t.Error("lookup should be disabled with empty path")
	}
	if got := g.LookupCountry("8.8.8.8"); got != "" {
		t.Errorf("LookupCountry = %q, want empty when disabled", got)
	}
}

func TestLookup_MissingDatabaseFile(t *testing.T) {
	g := NewLookup()
	if err := g.Init("/nonexistent/GeoLite2-Country.mmdb"); err == nil {
		t.Error("Init should fail for a missing database file")
	}
	if g.IsEnabled() {
		t.Error("lookup should stay disabled after failed Init")
	}
}

func TestLookup_PrivateAndLoopbackIPs(t *testing.T) {
	g := NewLookup()
	_ = g.Init("")

	for _, ip := range []string{"192.168.1.10", "10.0.0.5", "172.16.0.1", "127.0.0.1"} {
		if got := g.LookupCountry(ip); got != "LOCAL" {
			t.Errorf("LookupCountry(%q) = %q, want LOCAL", ip, got)
		}
	}
}

func TestLookup_InvalidIP(t *testing.T) {
	g := NewLookup()
	_ = g.Init("")

	if got := g.LookupCountry("not-an-ip"); got != "" {
		t.Errorf("LookupCountry = %q for invalid IP, want empty", got)
	}
}

func TestCountryName(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"DE", "Germany"},
		{"LOCAL", "Local Network"},
		{"", "Unknown"},
		{"XX", "XX"},
	}
	for _, tt := range tests {
		if got := CountryName(tt.code); got != tt.want {
			t.Errorf("CountryName(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
