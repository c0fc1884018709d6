package translator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/valpere/pdftran/internal/creds"
)

func testCreds() creds.Credentials {
	return creds.Credentials{
		APIKey:      "test-key",
		AccessToken: "test-token",
		ProjectID:   "test-project",
	}
}

func successBody(text string) string {
	return fmt.Sprintf(`{"data":{"translations":[{"translatedText":%q}]}}`, text)
}

func errorBody(code int, message, reason string) string {
	return fmt.Sprintf(`{"error":{"code":%d,"message":%q,"errors":[{"reason":%q}]}}`, code, message, reason)
}

func TestGoogleREST_Translate_Success(t *testing.T) {
	var gotBody map[string]string
	var gotAuth, gotProject, gotContentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotProject = r.Header.Get("x-goog-user-project")
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		fmt.Fprint(w, successBody("Hej världen"))
	}))
	defer server.Close()

	s := NewGoogleRESTWithEndpoint(server.URL, server.Client())
	out, err := s.Translate(context.Background(), "Hello world", "en", "sv", testCreds())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Hej världen" {
		t.Errorf("expected 'Hej världen', got %q", out)
	}

	if gotAuth != "Bearer test-token" {
		t.Errorf("expected bearer token header, got %q", gotAuth)
	}
	if gotProject != "test-project" {
		t.Errorf("expected project header, got %q", gotProject)
	}
	if gotContentType != "application/json; charset=utf-8" {
		t.Errorf("unexpected content type %q", gotContentType)
	}
	if gotBody["q"] != "Hello world" || gotBody["source"] != "en" || gotBody["target"] != "sv" {
		t.Errorf("unexpected request body: %v", gotBody)
	}
	if gotBody["format"] != "text" {
		t.Errorf("expected format 'text', got %q", gotBody["format"])
	}
	if gotBody["key"] != "test-key" {
		t.Errorf("expected API key in body, got %q", gotBody["key"])
	}
}

func TestGoogleREST_Translate_EmptyCredentialsOmitHeaders(t *testing.T) {
	var hasAuth, hasProject bool

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasAuth = r.Header["Authorization"]
		_, hasProject = r.Header["X-Goog-User-Project"]
		fmt.Fprint(w, successBody("ok"))
	}))
	defer server.Close()

	s := NewGoogleRESTWithEndpoint(server.URL, server.Client())
	_, err := s.Translate(context.Background(), "hi", "en", "sv", creds.Credentials{APIKey: "only-key"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hasAuth {
		t.Error("Authorization header must be omitted without a token")
	}
	if hasProject {
		t.Error("x-goog-user-project header must be omitted without a project")
	}
}

func TestGoogleREST_Translate_Classification(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   Kind
	}{
		{"401 is auth", 401, errorBody(401, "invalid token", "authError"), KindAuth},
		{"403 default is auth", 403, errorBody(403, "forbidden", "forbidden"), KindAuth},
		{"403 rate reason is rate limit", 403, errorBody(403, "quota", "rateLimitExceeded"), KindRateLimit},
		{"403 daily limit is rate limit", 403, errorBody(403, "quota", "dailyLimitExceeded"), KindRateLimit},
		{"429 is rate limit", 429, errorBody(429, "too many requests", ""), KindRateLimit},
		{"500 is transient", 500, "internal error", KindTransient},
		{"503 is transient", 503, errorBody(503, "backend unavailable", "backendError"), KindTransient},
		{"400 is permanent", 400, errorBody(400, "invalid language pair", "badRequest"), KindPermanent},
		{"404 is permanent", 404, "not found", KindPermanent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				fmt.Fprint(w, tc.body)
			}))
			defer server.Close()

			s := NewGoogleRESTWithEndpoint(server.URL, server.Client())
			_, err := s.Translate(context.Background(), "hi", "en", "sv", testCreds())
			if err == nil {
				t.Fatal("expected error")
			}

			var te *Error
			if !errors.As(err, &te) {
				t.Fatalf("expected *Error, got %T: %v", err, err)
			}
			if te.Kind != tc.want {
				t.Errorf("expected kind %v, got %v", tc.want, te.Kind)
			}
			if te.Status != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, te.Status)
			}
		})
	}
}

func TestGoogleREST_Translate_APIErrorMessageSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(403)
		fmt.Fprint(w, errorBody(403, "billing is disabled", "forbidden"))
	}))
	defer server.Close()

	s := NewGoogleRESTWithEndpoint(server.URL, server.Client())
	_, err := s.Translate(context.Background(), "hi", "en", "sv", testCreds())
	if err == nil {
		t.Fatal("expected error")
	}

	var te *Error
	if !errors.As(err, &te) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if te.Message != "billing is disabled" {
		t.Errorf("expected API message to be surfaced, got %q", te.Message)
	}
}

func TestGoogleREST_Translate_EmptyResponseIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"translations":[]}}`)
	}))
	defer server.Close()

	s := NewGoogleRESTWithEndpoint(server.URL, server.Client())
	_, err := s.Translate(context.Background(), "hi", "en", "sv", testCreds())
	if err == nil {
		t.Fatal("expected error")
	}
	if KindOf(err) != KindTransient {
		t.Errorf("expected transient, got %v", KindOf(err))
	}
}

func TestGoogleREST_Translate_NetworkFailureIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	s := NewGoogleRESTWithEndpoint(server.URL, nil)
	_, err := s.Translate(context.Background(), "hi", "en", "sv", testCreds())
	if err == nil {
		t.Fatal("expected error")
	}
	if KindOf(err) != KindTransient {
		t.Errorf("expected transient, got %v", KindOf(err))
	}
}

func TestGoogleREST_Translate_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, successBody("never"))
	}))
	defer server.Close()

	s := NewGoogleRESTWithEndpoint(server.URL, server.Client())
	_, err := s.Translate(ctx, "hi", "en", "sv", testCreds())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestGoogleREST_Translate_Idempotent(t *testing.T) {
	calls := atomic.Int32{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, successBody("Hej"))
	}))
	defer server.Close()

	s := NewGoogleRESTWithEndpoint(server.URL, server.Client())
	first, err1 := s.Translate(context.Background(), "Hello", "en", "sv", testCreds())
	second, err2 := s.Translate(context.Background(), "Hello", "en", "sv", testCreds())
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v, %v", err1, err2)
	}
	if first != second {
		t.Errorf("repeated request differs: %q vs %q", first, second)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
}

func TestKindOf_ForeignErrorIsPermanent(t *testing.T) {
	if got := KindOf(errors.New("some other failure")); got != KindPermanent {
		t.Errorf("expected permanent for foreign errors, got %v", got)
	}
}

func TestClassifyStatus(t *testing.T) {
	cases := []struct {
		status int
		reason string
		want   Kind
	}{
		{401, "", KindAuth},
		{403, "", KindAuth},
		{403, "userRateLimitExceeded", KindRateLimit},
		{403, "quotaExceeded", KindRateLimit},
		{429, "", KindRateLimit},
		{500, "", KindTransient},
		{502, "", KindTransient},
		{400, "", KindPermanent},
		{413, "", KindPermanent},
	}

	for _, tc := range cases {
		if got := classifyStatus(tc.status, tc.reason); got != tc.want {
			t.Errorf("classifyStatus(%d, %q) = %v, want %v", tc.status, tc.reason, got, tc.want)
		}
	}
}
