package lookup

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/memelandia/internal/model"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

func TestClient_Exists_Found(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("HTTPメソッド = %s, want GET", r.Method)
		}
		if r.URL.Path != "/categories/name/ciencia" {
			t.Errorf("path = %s, want /categories/name/ciencia", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c-1","name":"ciencia"}`))
	}))
	defer server.Close()

	var buf bytes.Buffer
	c := NewCategoryClient(server.URL, server.Client(), newTestLogger(&buf))

	ok, err := c.Exists(context.Background(), "ciencia")
	if err != nil {
		t.Fatalf("Exists がエラーを返した: %v", err)
	}
	if !ok {
		t.Error("Exists = false, want true")
	}
}

func TestClient_Exists_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/name/ana" {
			t.Errorf("path = %s, want /users/name/ana", r.URL.Path)
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	var buf bytes.Buffer
	c := NewUserClient(server.URL+"/", server.Client(), newTestLogger(&buf))

	ok, err := c.Exists(context.Background(), "ana")
	if err != nil {
		t.Fatalf("404 はエラーではなく false を返すべき: %v", err)
	}
	if ok {
		t.Error("Exists = true, want false")
	}
}

func TestClient_Exists_EscapesName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawPath != "/categories/name/a%2Fb%20c" && r.URL.EscapedPath() != "/categories/name/a%2Fb%20c" {
			t.Errorf("escaped path = %s, want /categories/name/a%%2Fb%%20c", r.URL.EscapedPath())
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	var buf bytes.Buffer
	c := NewCategoryClient(server.URL, server.Client(), newTestLogger(&buf))

	if _, err := c.Exists(context.Background(), "a/b c"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_Exists_UnexpectedStatusIsTransportError(t *testing.T) {
	statuses := []int{http.StatusInternalServerError, http.StatusBadGateway, http.StatusBadRequest}

	for _, status := range statuses {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		var buf bytes.Buffer
		c := NewCategoryClient(server.URL, server.Client(), newTestLogger(&buf))

		_, err := c.Exists(context.Background(), "ciencia")
		server.Close()

		var te *model.TransportError
		if !errors.As(err, &te) {
			t.Errorf("status %d: error = %v, want *model.TransportError", status, err)
			continue
		}
		if te.Service != "category" {
			t.Errorf("status %d: Service = %q, want category", status, te.Service)
		}
	}
}

func TestClient_Exists_TimeoutIsTransportError(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	var buf bytes.Buffer
	c := NewUserClient(server.URL, NewHTTPClient(50*time.Millisecond), newTestLogger(&buf))

	start := time.Now()
	_, err := c.Exists(context.Background(), "ana")
	if time.Since(start) > 2*time.Second {
		t.Error("Exists should give up after the client timeout")
	}

	var te *model.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("error = %v, want *model.TransportError", err)
	}
	if te.Service != "user" {
		t.Errorf("Service = %q, want user", te.Service)
	}
}

func TestClient_Exists_ConnectionRefusedIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	var buf bytes.Buffer
	c := NewCategoryClient(addr, NewHTTPClient(time.Second), newTestLogger(&buf))

	_, err := c.Exists(context.Background(), "ciencia")
	var te *model.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("error = %v, want *model.TransportError", err)
	}
	if buf.Len() == 0 {
		t.Error("transport failure should be logged")
	}
}

func TestClient_Kind(t *testing.T) {
	if k := NewCategoryClient("http://x", http.DefaultClient, nil).Kind(); k != model.KindCategory {
		t.Errorf("Kind = %s, want category", k)
	}
	if k := NewUserClient("http://x", http.DefaultClient, nil).Kind(); k != model.KindUser {
		t.Errorf("Kind = %s, want user", k)
	}
}
