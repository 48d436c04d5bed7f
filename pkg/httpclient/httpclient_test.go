package httpclient

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shieldscan/shieldscan/pkg/defaults"
)

func TestDefaultClient_IsSingleton(t *testing.T) {
	c1 := Default()
	c2 := Default()
	if c1 == nil {
		t.Fatal("Default() returned nil")
	}
	if c1 != c2 {
		t.Error("Default() should return same instance")
	}
	if c1.Jar == nil {
		t.Error("Default() client must carry a cookie jar")
	}
}

func TestNewClient_RespectsTimeout(t *testing.T) {
	client := New(Config{Timeout: 5 * time.Second})
	if client.Timeout != 5*time.Second {
		t.Errorf("Expected timeout 5s, got %v", client.Timeout)
	}
}

func TestNewClient_ZeroConfigUsesDefaults(t *testing.T) {
	client := New(Config{})
	if client.Timeout != DefaultConfig().Timeout {
		t.Errorf("Expected default timeout, got %v", client.Timeout)
	}
	if client.CheckRedirect == nil {
		t.Error("CheckRedirect function not set")
	}
}

func TestNewClient_SendsUserAgent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	resp, err := New(DefaultConfig()).Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()

	if got != defaults.UAChrome103 {
		t.Errorf("User-Agent = %q, want %q", got, defaults.UAChrome103)
	}
}

func TestNewClient_InsecureTLS(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}))
	defer srv.Close()

	resp, err := New(DefaultConfig()).Get(srv.URL)
	if err != nil {
		t.Fatalf("GET with InsecureSkipVerify: %v", err)
	}
	resp.Body.Close()

	strict := DefaultConfig()
	strict.InsecureSkipVerify = false
	if _, err := New(strict).Get(srv.URL); err == nil {
		t.Error("expected certificate error with verification enabled")
	} else if !strings.Contains(Classify(err).Error(), ErrTLS.Error()) {
		t.Errorf("Classify(%v) did not report ErrTLS", err)
	}
}

func TestNewClient_PersistsCookies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/set" {
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
			return
		}
		c, err := r.Cookie("session")
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, c.Value)
	}))
	defer srv.Close()

	client := New(DefaultConfig())
	resp, err := client.Get(srv.URL + "/set")
	if err != nil {
		t.Fatalf("GET /set: %v", err)
	}
	resp.Body.Close()

	resp, err = client.Get(srv.URL + "/check")
	if err != nil {
		t.Fatalf("GET /check: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "abc" {
		t.Errorf("cookie not replayed: status=%d body=%q", resp.StatusCode, body)
	}

	// A separate client has its own jar.
	resp, err = New(DefaultConfig()).Get(srv.URL + "/check")
	if err != nil {
		t.Fatalf("GET /check: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("fresh client leaked cookie, status=%d", resp.StatusCode)
	}
}

func TestNewClient_Redirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/old":
			http.Redirect(w, r, "/new", http.StatusFound)
		case "/loop":
			http.Redirect(w, r, "/loop", http.StatusFound)
		default:
			if r.Header.Get("User-Agent") != defaults.UAChrome103 {
				w.WriteHeader(http.StatusBadRequest)
			}
		}
	}))
	defer srv.Close()

	resp, err := New(DefaultConfig()).Get(srv.URL + "/old")
	if err != nil {
		t.Fatalf("GET /old: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Request.URL.Path != "/new" {
		t.Errorf("redirect not followed: status=%d path=%s", resp.StatusCode, resp.Request.URL.Path)
	}

	noFollow := DefaultConfig()
	noFollow.FollowRedirects = false
	resp, err = New(noFollow).Get(srv.URL + "/old")
	if err != nil {
		t.Fatalf("GET /old: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Errorf("expected 302 when not following, got %d", resp.StatusCode)
	}

	_, err = New(DefaultConfig()).Get(srv.URL + "/loop")
	if err == nil || !strings.Contains(err.Error(), ErrTooManyRedirects.Error()) {
		t.Errorf("expected too many redirects, got %v", err)
	}
}
