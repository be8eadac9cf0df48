package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLoginURLContainsRequiredParams(t *testing.T) {
	provider := NewGoogleProvider(GoogleConfig{
		ClientID:    "test-client-id",
		RedirectURL: "http://localhost:3001/auth/google/callback",
	})

	url := provider.LoginURL("test-state")

	for _, want := range []string{
		"client_id=test-client-id",
		"redirect_uri=",
		"state=test-state",
		"response_type=code",
		"email",
		"profile",
	} {
		if !strings.Contains(url, want) {
			t.Errorf("login URL missing %q: %s", want, url)
		}
	}
}

func TestExchangeReturnsProfileClaims(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "test-access-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer tokenServer.Close()

	userInfoServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-access-token" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"sub":         "google-sub-1",
			"email":       "alice@example.com",
			"name":        "Alice Example",
			"given_name":  "Alice",
			"family_name": "Example",
			"picture":     "https://example.com/alice.png",
			"hd":          "example.com",
		})
	}))
	defer userInfoServer.Close()

	provider := NewGoogleProvider(GoogleConfig{
		ClientID:     "test-client-id",
		ClientSecret: "test-client-secret",
		RedirectURL:  "http://localhost:3001/auth/google/callback",
		AuthURL:      tokenServer.URL + "/auth",
		TokenURL:     tokenServer.URL + "/token",
		UserInfoURL:  userInfoServer.URL,
	})

	info, err := provider.Exchange(context.Background(), "test-code")
	if err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}

	if info.Email != "alice@example.com" {
		t.Errorf("email = %q", info.Email)
	}
	if info.GivenName != "Alice" || info.FamilyName != "Example" {
		t.Errorf("name claims = %q %q", info.GivenName, info.FamilyName)
	}
	if info.HD != "example.com" {
		t.Errorf("hd = %q", info.HD)
	}
}

func TestExchangeRejectsMissingEmail(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "test-access-token",
			"token_type":   "Bearer",
		})
	}))
	defer tokenServer.Close()

	userInfoServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"sub": "google-sub-1"})
	}))
	defer userInfoServer.Close()

	provider := NewGoogleProvider(GoogleConfig{
		ClientID:    "test-client-id",
		AuthURL:     tokenServer.URL + "/auth",
		TokenURL:    tokenServer.URL + "/token",
		UserInfoURL: userInfoServer.URL,
	})

	if _, err := provider.Exchange(context.Background(), "test-code"); err == nil {
		t.Fatal("Exchange() accepted a profile without an email claim")
	}
}
