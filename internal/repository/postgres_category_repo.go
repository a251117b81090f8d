package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/memelandia/internal/model"
)

const categoryColumns = `id, name, description, registered_at`

// PostgresCategoryRepo はPostgreSQLを使用したカテゴリリポジトリ。
type PostgresCategoryRepo struct {
	db *sql.DB
}

// NewPostgresCategoryRepo はPostgresCategoryRepoを生成する。
func NewPostgresCategoryRepo(db *sql.DB) *PostgresCategoryRepo {
	return &PostgresCategoryRepo{db: db}
}

// FindAll は全カテゴリを登録日時の昇順で返す。
func (r *PostgresCategoryRepo) FindAll(ctx context.Context) ([]*model.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories ORDER BY registered_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]*model.Category, 0)
	for rows.Next() {
		c := &model.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.RegisteredAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	return categories, nil
}

// FindByID は指定IDのカテゴリを取得する。見つからない場合はnilを返す。
func (r *PostgresCategoryRepo) FindByID(ctx context.Context, id string) (*model.Category, error) {
	return r.findOne(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
}

// FindByName は指定名のカテゴリを取得する。見つからない場合はnilを返す。
func (r *PostgresCategoryRepo) FindByName(ctx context.Context, name string) (*model.Category, error) {
	return r.findOne(ctx, `SELECT `+categoryColumns+` FROM categories WHERE name = $1`, name)
}

func (r *PostgresCategoryRepo) findOne(ctx context.Context, query string, arg string) (*model.Category, error) {
	c := &model.Category{}
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&c.ID, &c.Name, &c.Description, &c.RegisteredAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find category: %w", err)
	}

	return c, nil
}

// Insert はカテゴリを保存する。
// categories.nameの一意制約に違反した場合はErrDuplicateNameを返す。
func (r *PostgresCategoryRepo) Insert(ctx context.Context, category *model.Category) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, description, registered_at)
		 VALUES ($1, $2, $3, $4)`,
		category.ID, category.Name, category.Description, category.RegisteredAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateName
	}
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

// DeleteByID は指定IDのカテゴリを削除する。
func (r *PostgresCategoryRepo) DeleteByID(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete category: %w", err)
	}
	return affected(result)
}

// DeleteByName は指定名のカテゴリを削除する。
func (r *PostgresCategoryRepo) DeleteByName(ctx context.Context, name string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE name = $1`, name)
	if err != nil {
		return false, fmt.Errorf("failed to delete category: %w", err)
	}
	return affected(result)
}

// compile-time interface check
var _ CategoryRepository = (*PostgresCategoryRepo)(nil)
