package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/memelandia/internal/category"
	"github.com/hitoshi/memelandia/internal/meme"
	"github.com/hitoshi/memelandia/internal/middleware"
	"github.com/hitoshi/memelandia/internal/model"
	"github.com/hitoshi/memelandia/internal/user"
)

// --- モック定義 ---

// mockCategoryService はCategoryServiceInterfaceのモック実装。
type mockCategoryService struct {
	listFn         func(ctx context.Context) ([]*model.Category, error)
	getFn          func(ctx context.Context, id string) (*model.Category, error)
	getByNameFn    func(ctx context.Context, name string) (*model.Category, error)
	createFn       func(ctx context.Context, in category.CreateInput) (*model.Category, error)
	deleteFn       func(ctx context.Context, id string) (bool, error)
	deleteByNameFn func(ctx context.Context, name string) (bool, error)
}

func (m *mockCategoryService) List(ctx context.Context) ([]*model.Category, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []*model.Category{}, nil
}

func (m *mockCategoryService) Get(ctx context.Context, id string) (*model.Category, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, model.NewNotFoundError(model.KindCategory, id)
}

func (m *mockCategoryService) GetByName(ctx context.Context, name string) (*model.Category, error) {
	if m.getByNameFn != nil {
		return m.getByNameFn(ctx, name)
	}
	return nil, model.NewNotFoundError(model.KindCategory, name)
}

func (m *mockCategoryService) Create(ctx context.Context, in category.CreateInput) (*model.Category, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return &model.Category{ID: "id", Name: in.Name, Description: in.Description}, nil
}

func (m *mockCategoryService) Delete(ctx context.Context, id string) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return false, nil
}

func (m *mockCategoryService) DeleteByName(ctx context.Context, name string) (bool, error) {
	if m.deleteByNameFn != nil {
		return m.deleteByNameFn(ctx, name)
	}
	return false, nil
}

// mockUserService はUserServiceInterfaceのモック実装。
type mockUserService struct {
	createFn       func(ctx context.Context, in user.CreateInput) (*model.User, error)
	getByNameFn    func(ctx context.Context, name string) (*model.User, error)
	deleteFn       func(ctx context.Context, id string) (bool, error)
	deleteByNameFn func(ctx context.Context, name string) (bool, error)
}

func (m *mockUserService) List(ctx context.Context) ([]*model.User, error) {
	return []*model.User{}, nil
}

func (m *mockUserService) Get(ctx context.Context, id string) (*model.User, error) {
	return nil, model.NewNotFoundError(model.KindUser, id)
}

func (m *mockUserService) GetByName(ctx context.Context, name string) (*model.User, error) {
	if m.getByNameFn != nil {
		return m.getByNameFn(ctx, name)
	}
	return nil, model.NewNotFoundError(model.KindUser, name)
}

func (m *mockUserService) Create(ctx context.Context, in user.CreateInput) (*model.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return &model.User{ID: "id", Name: in.Name, Email: in.Email}, nil
}

func (m *mockUserService) Delete(ctx context.Context, id string) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return false, nil
}

func (m *mockUserService) DeleteByName(ctx context.Context, name string) (bool, error) {
	if m.deleteByNameFn != nil {
		return m.deleteByNameFn(ctx, name)
	}
	return false, nil
}

// mockMemeService はMemeServiceInterfaceのモック実装。
type mockMemeService struct {
	createFn       func(ctx context.Context, in meme.CreateInput) (*model.Meme, error)
	ofTheDayFn     func(ctx context.Context) (*model.Meme, error)
	getFn          func(ctx context.Context, id string) (*model.Meme, error)
	deleteByNameFn func(ctx context.Context, name string) (bool, error)
}

func (m *mockMemeService) List(ctx context.Context) ([]*model.Meme, error) {
	return []*model.Meme{}, nil
}

func (m *mockMemeService) Get(ctx context.Context, id string) (*model.Meme, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, model.NewNotFoundError(model.KindMeme, id)
}

func (m *mockMemeService) GetByName(ctx context.Context, name string) (*model.Meme, error) {
	return nil, model.NewNotFoundError(model.KindMeme, name)
}

func (m *mockMemeService) Create(ctx context.Context, in meme.CreateInput) (*model.Meme, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return &model.Meme{ID: "id", Name: in.Name}, nil
}

func (m *mockMemeService) OfTheDay(ctx context.Context) (*model.Meme, error) {
	if m.ofTheDayFn != nil {
		return m.ofTheDayFn(ctx)
	}
	return nil, model.NewNoDataAvailableError()
}

func (m *mockMemeService) Delete(ctx context.Context, id string) (bool, error) {
	return false, nil
}

func (m *mockMemeService) DeleteByName(ctx context.Context, name string) (bool, error) {
	if m.deleteByNameFn != nil {
		return m.deleteByNameFn(ctx, name)
	}
	return false, nil
}

// --- テストヘルパー ---

// newTestRouter はモックサービスを登録したchi.Routerを返す。
func newTestRouter(register func(r chi.Router)) chi.Router {
	r := chi.NewRouter()
	register(r)
	return r
}

// parseAPIErrorResponse はレスポンスボディから統一エラーフォーマットをパースするヘルパー。
func parseAPIErrorResponse(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorResponseBody {
	t.Helper()
	var result middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return result
}
