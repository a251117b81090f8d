package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/memelandia/internal/category"
	"github.com/hitoshi/memelandia/internal/model"
)

// CategoryServiceInterface はカテゴリハンドラーが必要とするサービスインターフェース。
type CategoryServiceInterface interface {
	List(ctx context.Context) ([]*model.Category, error)
	Get(ctx context.Context, id string) (*model.Category, error)
	GetByName(ctx context.Context, name string) (*model.Category, error)
	// Create は同名が存在する場合DuplicateNameエラーを返す。
	Create(ctx context.Context, in category.CreateInput) (*model.Category, error)
	Delete(ctx context.Context, id string) (bool, error)
	DeleteByName(ctx context.Context, name string) (bool, error)
}

// CategoryHandler はカテゴリ管理のHTTPハンドラー。
type CategoryHandler struct {
	service CategoryServiceInterface
}

// NewCategoryHandler はCategoryHandlerを生成する。
func NewCategoryHandler(service CategoryServiceInterface) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// List はカテゴリ一覧を返す。
// GET /categories
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// Create はカテゴリを作成する。
// POST /categories
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in category.CreateInput
	if !decodeJSON(w, r, &in) {
		return
	}

	c, err := h.service.Create(r.Context(), in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// Get は指定IDのカテゴリを返す。
// GET /categories/{id}
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// GetByName は指定名のカテゴリを返す。
// GET /categories/name/{name}
func (h *CategoryHandler) GetByName(w http.ResponseWriter, r *http.Request) {
	name, ok := nameParam(w, r)
	if !ok {
		return
	}

	c, err := h.service.GetByName(r.Context(), name)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Delete は指定IDのカテゴリを削除する。
// DELETE /categories/{id}
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeDeleteResult(w, deleted, model.KindCategory, id)
}

// DeleteByName は指定名のカテゴリを削除する。
// DELETE /categories/name/{name}
func (h *CategoryHandler) DeleteByName(w http.ResponseWriter, r *http.Request) {
	name, ok := nameParam(w, r)
	if !ok {
		return
	}

	deleted, err := h.service.DeleteByName(r.Context(), name)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeDeleteResult(w, deleted, model.KindCategory, name)
}

// SetupCategoryRoutes はカテゴリ管理のルーティングをrに登録する。
// createMiddlewareがnilでない場合、POST /categoriesに適用する。
func SetupCategoryRoutes(r chi.Router, service CategoryServiceInterface, createMiddleware func(http.Handler) http.Handler) {
	h := NewCategoryHandler(service)

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.List)
		if createMiddleware != nil {
			r.With(createMiddleware).Post("/", h.Create)
		} else {
			r.Post("/", h.Create)
		}

		r.Get("/name/{name}", h.GetByName)
		r.Delete("/name/{name}", h.DeleteByName)

		r.Get("/{id}", h.Get)
		r.Delete("/{id}", h.Delete)
	})
}
