package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SyedSaifuddin045/spolist/internal/shared"
)

func newTokenEndpoint(t *testing.T, status int, body string, capture *map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse form: %v", err)
		}
		if capture != nil {
			form := make(map[string]string)
			for key := range r.PostForm {
				form[key] = r.PostForm.Get(key)
			}
			*capture = form
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("unexpected content type %q", ct)
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestExchange(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		var form map[string]string
		srv := newTokenEndpoint(t, http.StatusOK, `{"access_token":"A","refresh_token":"R","expires_in":3600}`, &form)
		defer srv.Close()

		exchanger := NewExchanger(srv.URL, srv.Client())

		before := time.Now()
		token, err := exchanger.Exchange(ctx, "client-1", "XYZ", "http://localhost/callback", "V1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if token.AccessToken != "A" || token.RefreshToken != "R" {
			t.Errorf("unexpected token %+v", token)
		}

		want := before.Add(3600 * time.Second)
		if diff := token.ExpiryDate.Sub(want); diff < 0 || diff > 2*time.Second {
			t.Errorf("expiry %v not within tolerance of now+3600s", token.ExpiryDate)
		}

		expected := map[string]string{
			"client_id":     "client-1",
			"grant_type":    "authorization_code",
			"code":          "XYZ",
			"redirect_uri":  "http://localhost/callback",
			"code_verifier": "V1",
		}
		for key, want := range expected {
			if form[key] != want {
				t.Errorf("form field %s: expected %q, got %q", key, want, form[key])
			}
		}
	})

	t.Run("Missing Verifier", func(t *testing.T) {
		exchanger := NewExchanger("http://unused.invalid", nil)
		_, err := exchanger.Exchange(ctx, "client-1", "XYZ", "http://localhost/callback", "")
		if !errors.Is(err, shared.ErrMissingVerifier) {
			t.Errorf("expected ErrMissingVerifier, got %v", err)
		}
	})

	t.Run("Provider Rejected", func(t *testing.T) {
		srv := newTokenEndpoint(t, http.StatusBadRequest, `{"error":"invalid_grant"}`, nil)
		defer srv.Close()

		exchanger := NewExchanger(srv.URL, srv.Client())
		_, err := exchanger.Exchange(ctx, "client-1", "bad", "http://localhost/callback", "V1")
		if !errors.Is(err, shared.ErrProviderRejected) {
			t.Errorf("expected ErrProviderRejected, got %v", err)
		}
	})

	t.Run("Malformed Response", func(t *testing.T) {
		for _, body := range []string{`not json`, `{}`, `{"access_token":"A"}`, `{"access_token":"A","expires_in":0}`} {
			srv := newTokenEndpoint(t, http.StatusOK, body, nil)

			exchanger := NewExchanger(srv.URL, srv.Client())
			_, err := exchanger.Exchange(ctx, "client-1", "XYZ", "http://localhost/callback", "V1")
			if !errors.Is(err, shared.ErrMalformedResponse) {
				t.Errorf("body %q: expected ErrMalformedResponse, got %v", body, err)
			}

			srv.Close()
		}
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	held := Token{AccessToken: "old", RefreshToken: "R1", ExpiresIn: 3600}

	t.Run("Success", func(t *testing.T) {
		var form map[string]string
		srv := newTokenEndpoint(t, http.StatusOK, `{"access_token":"A2","refresh_token":"R2","expires_in":3600}`, &form)
		defer srv.Close()

		exchanger := NewExchanger(srv.URL, srv.Client())
		token, err := exchanger.Refresh(ctx, "client-1", held)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if token.AccessToken != "A2" || token.RefreshToken != "R2" {
			t.Errorf("unexpected token %+v", token)
		}

		if form["grant_type"] != "refresh_token" || form["refresh_token"] != "R1" || form["client_id"] != "client-1" {
			t.Errorf("unexpected refresh form %v", form)
		}
	})

	t.Run("Keeps Refresh Token When Omitted", func(t *testing.T) {
		srv := newTokenEndpoint(t, http.StatusOK, `{"access_token":"A2","expires_in":3600}`, nil)
		defer srv.Close()

		exchanger := NewExchanger(srv.URL, srv.Client())
		token, err := exchanger.Refresh(ctx, "client-1", held)
		if err != nil {
			t.Fatal(err)
		}
		if token.RefreshToken != "R1" {
			t.Errorf("expected prior refresh token to carry forward, got %q", token.RefreshToken)
		}
	})

	t.Run("Rejected", func(t *testing.T) {
		srv := newTokenEndpoint(t, http.StatusUnauthorized, `{"error":"invalid_grant"}`, nil)
		defer srv.Close()

		exchanger := NewExchanger(srv.URL, srv.Client())
		_, err := exchanger.Refresh(ctx, "client-1", held)
		if !errors.Is(err, shared.ErrRefreshRejected) {
			t.Errorf("expected ErrRefreshRejected, got %v", err)
		}
	})

	t.Run("Transport Failure", func(t *testing.T) {
		srv := newTokenEndpoint(t, http.StatusOK, `{}`, nil)
		srv.Close() // no response from a closed server

		exchanger := NewExchanger(srv.URL, nil)
		_, err := exchanger.Refresh(ctx, "client-1", held)
		if !errors.Is(err, shared.ErrRefreshTransport) {
			t.Errorf("expected ErrRefreshTransport, got %v", err)
		}
	})

	t.Run("No Refresh Token Held", func(t *testing.T) {
		exchanger := NewExchanger("http://unused.invalid", nil)
		_, err := exchanger.Refresh(ctx, "client-1", Token{AccessToken: "A"})
		if !errors.Is(err, shared.ErrRefreshRejected) {
			t.Errorf("expected ErrRefreshRejected, got %v", err)
		}
	})
}
