package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/memelandia/internal/model"
	"github.com/hitoshi/memelandia/internal/user"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	List(ctx context.Context) ([]*model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
	GetByName(ctx context.Context, name string) (*model.User, error)
	// Create は同名が存在する場合DuplicateNameエラーを返す。
	Create(ctx context.Context, in user.CreateInput) (*model.User, error)
	Delete(ctx context.Context, id string) (bool, error)
	DeleteByName(ctx context.Context, name string) (bool, error)
}

// UserHandler はユーザー管理のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// List はユーザー一覧を返す。
// GET /users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Create はユーザーを作成する。
// POST /users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in user.CreateInput
	if !decodeJSON(w, r, &in) {
		return
	}

	u, err := h.service.Create(r.Context(), in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// Get は指定IDのユーザーを返す。
// GET /users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	u, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// GetByName は指定名のユーザーを返す。
// GET /users/name/{name}
func (h *UserHandler) GetByName(w http.ResponseWriter, r *http.Request) {
	name, ok := nameParam(w, r)
	if !ok {
		return
	}

	u, err := h.service.GetByName(r.Context(), name)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// Delete は指定IDのユーザーを削除する。
// DELETE /users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeDeleteResult(w, deleted, model.KindUser, id)
}

// DeleteByName は指定名のユーザーを削除する。
// DELETE /users/name/{name}
func (h *UserHandler) DeleteByName(w http.ResponseWriter, r *http.Request) {
	name, ok := nameParam(w, r)
	if !ok {
		return
	}

	deleted, err := h.service.DeleteByName(r.Context(), name)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeDeleteResult(w, deleted, model.KindUser, name)
}

// SetupUserRoutes はユーザー管理のルーティングをrに登録する。
// createMiddlewareがnilでない場合、POST /usersに適用する。
func SetupUserRoutes(r chi.Router, service UserServiceInterface, createMiddleware func(http.Handler) http.Handler) {
	h := NewUserHandler(service)

	r.Route("/users", func(r chi.Router) {
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
