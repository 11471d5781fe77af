// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// testLoginProtectionConfig returns a config suitable for fast testing.
func testLoginProtectionConfig(maxAttempts int, lockoutDuration, attemptWindow time.Duration) LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       10,
		IPBurst:           100,
		MaxFailedAttempts: maxAttempts,
		LockoutDuration:   lockoutDuration,
		AttemptWindow:     attemptWindow,
	}
}

func TestDefaultLoginProtectionConfig(t *testing.T) {
	cfg := DefaultLoginProtectionConfig()

	if cfg.IPRateLimit != 0.5 {
		t.Errorf("IPRateLimit = %v, want 0.5", cfg.IPRateLimit)
	}
	if cfg.IPBurst != 5 {
		t.Errorf("IPBurst = %d, want 5", cfg.IPBurst)
	}
	if cfg.MaxFailedAttempts != 5 {
		t.Errorf("MaxFailedAttempts = %d, want 5", cfg.MaxFailedAttempts)
	}
	if cfg.LockoutDuration != 15*time.Minute {
		t.Errorf("LockoutDuration = %v, want 15m", cfg.LockoutDuration)
	}
	if cfg.AttemptWindow != 15*time.Minute {
		t.Errorf("AttemptWindow = %v, want 15m", cfg.AttemptWindow)
	}
}

func TestNewLoginProtectionDefaultValues(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{})

	if lp.maxFailedAttempts != 5 {
		t.Errorf("maxFailedAttempts = %d, want 5", lp.maxFailedAttempts)
	}
	if lp.lockoutDuration != 15*time.Minute {
		t.Errorf("lockoutDuration = %v, want 15m", lp.lockoutDuration)
	}
}

func TestAccountLockout(t *testing.T) {
	lp := NewLoginProtection(testLoginProtectionConfig(3, time.Minute, time.Minute))

	identity := "target@example.com"

	if locked, _ := lp.IsAccountLocked(identity); locked {
		t.Error("account should not be locked initially")
	}

	lp.RecordFailedAttempt(identity)
	lp.RecordFailedAttempt(identity)
	if locked, _ := lp.IsAccountLocked(identity); locked {
		t.Error("account should not be locked before max attempts")
	}

	locked, duration := lp.RecordFailedAttempt(identity)
	if !locked {
		t.Fatal("account should lock on third failure")
	}
	if duration != time.Minute {
		t.Errorf("lock duration = %v, want 1m", duration)
	}

	if locked, remaining := lp.IsAccountLocked(identity); !locked {
		t.Error("IsAccountLocked should report locked")
	} else if remaining <= 0 {
		t.Errorf("remaining = %v, should be positive", remaining)
	}
}

func TestLockoutExponentialBackoff(t *testing.T) {
	lp := NewLoginProtection(testLoginProtectionConfig(2, time.Minute, time.Hour))

	identity := "repeat@example.com"

	lp.RecordFailedAttempt(identity)
	locked, first := lp.RecordFailedAttempt(identity)
	if !locked {
		t.Fatal("first lockout expected")
	}

	// Simulate the first lockout expiring.
	lp.attemptsMu.Lock()
	lp.failedAttempts[identity].lockedUntil = time.Now().Add(-time.Second)
	lp.attemptsMu.Unlock()

	lp.RecordFailedAttempt(identity)
	locked, second := lp.RecordFailedAttempt(identity)
	if !locked {
		t.Fatal("second lockout expected")
	}
	if second != first*2 {
		t.Errorf("second lockout = %v, want %v", second, first*2)
	}
}

func TestRecordSuccessfulLogin(t *testing.T) {
	lp := NewLoginProtection(testLoginProtectionConfig(3, time.Minute, time.Minute))

	identity := "ok@example.com"
	lp.RecordFailedAttempt(identity)
	lp.RecordFailedAttempt(identity)
	if got := lp.GetRemainingAttempts(identity); got != 1 {
		t.Errorf("remaining = %d, want 1", got)
	}

	lp.RecordSuccessfulLogin(identity)
	if got := lp.GetRemainingAttempts(identity); got != 3 {
		t.Errorf("remaining after success = %d, want 3", got)
	}
}

func TestAttemptWindowReset(t *testing.T) {
	lp := NewLoginProtection(testLoginProtectionConfig(3, time.Minute, 50*time.Millisecond))

	identity := "slow@example.com"
	lp.RecordFailedAttempt(identity)
	lp.RecordFailedAttempt(identity)

	time.Sleep(60 * time.Millisecond)

	// Window has passed; the counter starts over.
	if locked, _ := lp.RecordFailedAttempt(identity); locked {
		t.Error("account should not lock after window reset")
	}
	if got := lp.GetRemainingAttempts(identity); got != 2 {
		t.Errorf("remaining = %d, want 2", got)
	}
}

func TestLoginProtectionMiddleware_GETPassesThrough(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{IPRateLimit: 0.001, IPBurst: 1})
	handler := lp.Middleware()(simpleOKHandler)

	// GET requests are never rate limited.
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/login", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i, w.Code, http.StatusOK)
		}
	}
}

func TestLoginProtectionMiddleware_POSTRateLimited(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{IPRateLimit: 0.001, IPBurst: 2})
	handler := lp.Middleware()(simpleOKHandler)

	var got []int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		req.RemoteAddr = "203.0.113.9:12345"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		got = append(got, w.Code)
	}

	if got[0] != http.StatusOK || got[1] != http.StatusOK {
		t.Errorf("first requests = %v, want burst allowed", got[:2])
	}
	if got[2] != http.StatusTooManyRequests {
		t.Errorf("third request = %d, want %d", got[2], http.StatusTooManyRequests)
	}
}
