package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/memelandia/internal/model"
)

// withNameParam はchiのルーティングを経由せずにnameパラメータを設定する。
func withNameParam(r *http.Request, name string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("name", name)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestNameParam_DecodedPathIsReturnedAsIs(t *testing.T) {
	r := withNameParam(httptest.NewRequest(http.MethodGet, "/categories/name/100%25", nil), "100%")
	w := httptest.NewRecorder()

	name, ok := nameParam(w, r)
	if !ok {
		t.Fatalf("nameParam failed: status %d", w.Code)
	}
	if name != "100%" {
		t.Errorf("name = %q, want %q", name, "100%")
	}
}

func TestNameParam_InvalidEscape(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/categories/name/a%3Bb", nil)
	if r.URL.RawPath == "" {
		t.Fatal("RawPath should be set for a;b")
	}
	r = withNameParam(r, "%zz")
	w := httptest.NewRecorder()

	if _, ok := nameParam(w, r); ok {
		t.Fatal("nameParam should fail for an invalid escape")
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if body := parseAPIErrorResponse(t, w); body.Code != model.ErrCodeInvalidRequest {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeInvalidRequest)
	}
}
