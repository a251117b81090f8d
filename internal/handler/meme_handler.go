package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/memelandia/internal/meme"
	"github.com/hitoshi/memelandia/internal/model"
)

// MemeServiceInterface はミームハンドラーが必要とするサービスインターフェース。
type MemeServiceInterface interface {
	List(ctx context.Context) ([]*model.Meme, error)
	Get(ctx context.Context, id string) (*model.Meme, error)
	GetByName(ctx context.Context, name string) (*model.Meme, error)
	// Create は参照先のカテゴリとユーザーを確認してから保存する。
	Create(ctx context.Context, in meme.CreateInput) (*model.Meme, error)
	// OfTheDay はランダムに1件を返す。0件の場合はNoDataAvailableエラーを返す。
	OfTheDay(ctx context.Context) (*model.Meme, error)
	Delete(ctx context.Context, id string) (bool, error)
	DeleteByName(ctx context.Context, name string) (bool, error)
}

// MemeHandler はミーム管理のHTTPハンドラー。
type MemeHandler struct {
	service MemeServiceInterface
}

// NewMemeHandler はMemeHandlerを生成する。
func NewMemeHandler(service MemeServiceInterface) *MemeHandler {
	return &MemeHandler{service: service}
}

// List はミーム一覧を返す。
// GET /memes
func (h *MemeHandler) List(w http.ResponseWriter, r *http.Request) {
	memes, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, memes)
}

// Create はミームを作成する。
// 参照先が存在しない場合は422、リモートサービスとの通信に失敗した場合は500を返す。
// POST /memes
func (h *MemeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in meme.CreateInput
	if !decodeJSON(w, r, &in) {
		return
	}

	m, err := h.service.Create(r.Context(), in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// OfTheDay は今日のミームを返す。
// GET /memes/of-the-day
func (h *MemeHandler) OfTheDay(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.OfTheDay(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Get は指定IDのミームを返す。
// GET /memes/{id}
func (h *MemeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	m, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// GetByName は指定名のミームのうち最も古いものを返す。
// GET /memes/name/{name}
func (h *MemeHandler) GetByName(w http.ResponseWriter, r *http.Request) {
	name, ok := nameParam(w, r)
	if !ok {
		return
	}

	m, err := h.service.GetByName(r.Context(), name)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Delete は指定IDのミームを削除する。
// DELETE /memes/{id}
func (h *MemeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeDeleteResult(w, deleted, model.KindMeme, id)
}

// DeleteByName は指定名のミームのうち最も古い1件を削除する。
// DELETE /memes/name/{name}
func (h *MemeHandler) DeleteByName(w http.ResponseWriter, r *http.Request) {
	name, ok := nameParam(w, r)
	if !ok {
		return
	}

	deleted, err := h.service.DeleteByName(r.Context(), name)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeDeleteResult(w, deleted, model.KindMeme, name)
}

// SetupMemeRoutes はミーム管理のルーティングをrに登録する。
// /memes/of-the-day は /memes/{id} より先に登録する。
func SetupMemeRoutes(r chi.Router, service MemeServiceInterface, createMiddleware func(http.Handler) http.Handler) {
	h := NewMemeHandler(service)

	r.Route("/memes", func(r chi.Router) {
		r.Get("/", h.List)
		if createMiddleware != nil {
			r.With(createMiddleware).Post("/", h.Create)
		} else {
			r.Post("/", h.Create)
		}

		r.Get("/of-the-day", h.OfTheDay)

		r.Get("/name/{name}", h.GetByName)
		r.Delete("/name/{name}", h.DeleteByName)

		r.Get("/{id}", h.Get)
		r.Delete("/{id}", h.Delete)
	})
}
