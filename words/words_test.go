package words

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPSupplier_FetchPair(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`["ocean","river"]`))
	}))
	defer server.Close()

	civilian, spy, err := NewHTTPSupplier(server.URL, time.Second).FetchPair()
	if err != nil {
		t.Fatalf("FetchPair failed: %v", err)
	}
	if civilian != "ocean" || spy != "river" {
		t.Errorf("Expected ocean/river, got %q/%q", civilian, spy)
	}
}

func TestHTTPSupplier_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	if _, _, err := NewHTTPSupplier(server.URL, time.Second).FetchPair(); err == nil {
		t.Error("Expected an error on non-200 status")
	}
}

func TestHTTPSupplier_InvalidBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	if _, _, err := NewHTTPSupplier(server.URL, time.Second).FetchPair(); err == nil {
		t.Error("Expected an error on an invalid body")
	}
}

func TestHTTPSupplier_TooFewWords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`["alone"]`))
	}))
	defer server.Close()

	if _, _, err := NewHTTPSupplier(server.URL, time.Second).FetchPair(); err == nil {
		t.Error("Expected an error when fewer than 2 words are returned")
	}
}

func TestHTTPSupplier_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`["ocean","river"]`))
	}))
	defer server.Close()

	if _, _, err := NewHTTPSupplier(server.URL, 20*time.Millisecond).FetchPair(); err == nil {
		t.Error("Expected a timeout error")
	}
}
