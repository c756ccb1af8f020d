package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func newFakeIdP(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "good-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok-1", "token_type": "bearer"})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 4242, "login": "octocat", "email": "octo@example.com"})
	})
	return httptest.NewServer(mux)
}

func newTestProvider(srv *httptest.Server) *Provider {
	return NewProvider(Config{
		Name:         "github",
		ClientID:     "client",
		ClientSecret: "secret",
		AuthURL:      srv.URL + "/authorize",
		TokenURL:     srv.URL + "/token",
		UserInfoURL:  srv.URL + "/user",
		RedirectURL:  "http://localhost/login/oauth2/code/github",
	})
}

func TestProvider_AuthCodeURL(t *testing.T) {
	srv := newFakeIdP(t)
	defer srv.Close()

	raw := newTestProvider(srv).AuthCodeURL("state-1")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("invalid url: %v", err)
	}
	if !strings.HasSuffix(u.Path, "/authorize") {
		t.Fatalf("unexpected path %s", u.Path)
	}
	q := u.Query()
	if q.Get("state") != "state-1" || q.Get("client_id") != "client" || q.Get("response_type") != "code" {
		t.Fatalf("unexpected query %v", q)
	}
}

func TestProvider_Exchange(t *testing.T) {
	srv := newFakeIdP(t)
	defer srv.Close()

	id, err := newTestProvider(srv).Exchange(context.Background(), "good-code")
	if err != nil {
		t.Fatalf("exchange failed: %v", err)
	}
	if id.Provider != "github" || id.Subject != "4242" || id.Username != "octocat" || id.Email != "octo@example.com" {
		t.Fatalf("unexpected identity %+v", id)
	}
}

func TestProvider_ExchangeFailures(t *testing.T) {
	srv := newFakeIdP(t)
	defer srv.Close()
	p := newTestProvider(srv)

	if _, err := p.Exchange(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty code")
	}
	if _, err := p.Exchange(context.Background(), "bad-code"); err == nil {
		t.Fatalf("expected error for rejected code")
	}
}
