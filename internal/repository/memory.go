package repository

import (
	"context"
	"math/rand"
	"sync"

	"github.com/hitoshi/memelandia/internal/model"
)

// memoryTable はプロセス内メモリ上の1テーブル分のストア。
// 挿入順を保持し、uniqueNameが有効な場合は名前の重複チェックと挿入をロック内で一括して行う。
type memoryTable[T any] struct {
	mu         sync.RWMutex
	rows       []T
	idOf       func(T) string
	nameOf     func(T) string
	clone      func(T) T
	uniqueName bool
}

func (t *memoryTable[T]) all() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]T, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, t.clone(row))
	}
	return out
}

func (t *memoryTable[T]) find(match func(T) bool) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, row := range t.rows {
		if match(row) {
			return t.clone(row), true
		}
	}
	var zero T
	return zero, false
}

func (t *memoryTable[T]) random() (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var zero T
	if len(t.rows) == 0 {
		return zero, false
	}
	return t.clone(t.rows[rand.Intn(len(t.rows))]), true
}

func (t *memoryTable[T]) insert(row T) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.uniqueName {
		name := t.nameOf(row)
		for _, existing := range t.rows {
			if t.nameOf(existing) == name {
				return ErrDuplicateName
			}
		}
	}
	t.rows = append(t.rows, t.clone(row))
	return nil
}

// deleteFirst は条件に一致する最初の1件を削除する。
func (t *memoryTable[T]) deleteFirst(match func(T) bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, row := range t.rows {
		if match(row) {
			t.rows = append(t.rows[:i], t.rows[i+1:]...)
			return true
		}
	}
	return false
}

func (t *memoryTable[T]) byID(id string) func(T) bool {
	return func(row T) bool { return t.idOf(row) == id }
}

func (t *memoryTable[T]) byName(name string) func(T) bool {
	return func(row T) bool { return t.nameOf(row) == name }
}

// --- Category ---

// MemoryCategoryRepo はメモリ上で動作するカテゴリリポジトリ。
// STORAGE_DRIVER=memory での起動とテストで使用する。
type MemoryCategoryRepo struct {
	table *memoryTable[*model.Category]
}

// NewMemoryCategoryRepo はMemoryCategoryRepoを生成する。
func NewMemoryCategoryRepo() *MemoryCategoryRepo {
	return &MemoryCategoryRepo{table: &memoryTable[*model.Category]{
		idOf:       func(c *model.Category) string { return c.ID },
		nameOf:     func(c *model.Category) string { return c.Name },
		clone:      func(c *model.Category) *model.Category { cp := *c; return &cp },
		uniqueName: true,
	}}
}

// FindAll は全カテゴリを挿入順で返す。
func (r *MemoryCategoryRepo) FindAll(ctx context.Context) ([]*model.Category, error) {
	return r.table.all(), nil
}

// FindByID は指定IDのカテゴリを返す。見つからない場合はnilを返す。
func (r *MemoryCategoryRepo) FindByID(ctx context.Context, id string) (*model.Category, error) {
	c, _ := r.table.find(r.table.byID(id))
	return c, nil
}

// FindByName は指定名のカテゴリを返す。見つからない場合はnilを返す。
func (r *MemoryCategoryRepo) FindByName(ctx context.Context, name string) (*model.Category, error) {
	c, _ := r.table.find(r.table.byName(name))
	return c, nil
}

// Insert はカテゴリを保存する。同名が存在する場合はErrDuplicateNameを返す。
func (r *MemoryCategoryRepo) Insert(ctx context.Context, category *model.Category) error {
	return r.table.insert(category)
}

// DeleteByID は指定IDのカテゴリを削除する。
func (r *MemoryCategoryRepo) DeleteByID(ctx context.Context, id string) (bool, error) {
	return r.table.deleteFirst(r.table.byID(id)), nil
}

// DeleteByName は指定名のカテゴリを削除する。
func (r *MemoryCategoryRepo) DeleteByName(ctx context.Context, name string) (bool, error) {
	return r.table.deleteFirst(r.table.byName(name)), nil
}

// --- User ---

// MemoryUserRepo はメモリ上で動作するユーザーリポジトリ。
type MemoryUserRepo struct {
	table *memoryTable[*model.User]
}

// NewMemoryUserRepo はMemoryUserRepoを生成する。
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{table: &memoryTable[*model.User]{
		idOf:       func(u *model.User) string { return u.ID },
		nameOf:     func(u *model.User) string { return u.Name },
		clone:      func(u *model.User) *model.User { cp := *u; return &cp },
		uniqueName: true,
	}}
}

// FindAll は全ユーザーを挿入順で返す。
func (r *MemoryUserRepo) FindAll(ctx context.Context) ([]*model.User, error) {
	return r.table.all(), nil
}

// FindByID は指定IDのユーザーを返す。見つからない場合はnilを返す。
func (r *MemoryUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	u, _ := r.table.find(r.table.byID(id))
	return u, nil
}

// FindByName は指定名のユーザーを返す。見つからない場合はnilを返す。
func (r *MemoryUserRepo) FindByName(ctx context.Context, name string) (*model.User, error) {
	u, _ := r.table.find(r.table.byName(name))
	return u, nil
}

// Insert はユーザーを保存する。同名が存在する場合はErrDuplicateNameを返す。
func (r *MemoryUserRepo) Insert(ctx context.Context, user *model.User) error {
	return r.table.insert(user)
}

// DeleteByID は指定IDのユーザーを削除する。
func (r *MemoryUserRepo) DeleteByID(ctx context.Context, id string) (bool, error) {
	return r.table.deleteFirst(r.table.byID(id)), nil
}

// DeleteByName は指定名のユーザーを削除する。
func (r *MemoryUserRepo) DeleteByName(ctx context.Context, name string) (bool, error) {
	return r.table.deleteFirst(r.table.byName(name)), nil
}

// --- Meme ---

// MemoryMemeRepo はメモリ上で動作するミームリポジトリ。名前の重複を許可する。
type MemoryMemeRepo struct {
	table *memoryTable[*model.Meme]
}

// NewMemoryMemeRepo はMemoryMemeRepoを生成する。
func NewMemoryMemeRepo() *MemoryMemeRepo {
	return &MemoryMemeRepo{table: &memoryTable[*model.Meme]{
		idOf:   func(m *model.Meme) string { return m.ID },
		nameOf: func(m *model.Meme) string { return m.Name },
		clone:  func(m *model.Meme) *model.Meme { cp := *m; return &cp },
	}}
}

// FindAll は全ミームを挿入順で返す。
func (r *MemoryMemeRepo) FindAll(ctx context.Context) ([]*model.Meme, error) {
	return r.table.all(), nil
}

// FindByID は指定IDのミームを返す。見つからない場合はnilを返す。
func (r *MemoryMemeRepo) FindByID(ctx context.Context, id string) (*model.Meme, error) {
	m, _ := r.table.find(r.table.byID(id))
	return m, nil
}

// FindByName は指定名のミームのうち最初に登録されたものを返す。
func (r *MemoryMemeRepo) FindByName(ctx context.Context, name string) (*model.Meme, error) {
	m, _ := r.table.find(r.table.byName(name))
	return m, nil
}

// FindRandom はランダムに1件のミームを返す。0件の場合はnilを返す。
func (r *MemoryMemeRepo) FindRandom(ctx context.Context) (*model.Meme, error) {
	m, _ := r.table.random()
	return m, nil
}

// Insert はミームを保存する。
func (r *MemoryMemeRepo) Insert(ctx context.Context, meme *model.Meme) error {
	return r.table.insert(meme)
}

// DeleteByID は指定IDのミームを削除する。
func (r *MemoryMemeRepo) DeleteByID(ctx context.Context, id string) (bool, error) {
	return r.table.deleteFirst(r.table.byID(id)), nil
}

// DeleteByName は指定名のミームのうち最初に登録された1件を削除する。
func (r *MemoryMemeRepo) DeleteByName(ctx context.Context, name string) (bool, error) {
	return r.table.deleteFirst(r.table.byName(name)), nil
}

// compile-time interface check
var (
	_ CategoryRepository = (*MemoryCategoryRepo)(nil)
	_ UserRepository     = (*MemoryUserRepo)(nil)
	_ MemeRepository     = (*MemoryMemeRepo)(nil)
)
