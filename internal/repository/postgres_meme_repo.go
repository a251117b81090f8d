package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/memelandia/internal/model"
)

const memeColumns = `id, name, description, url, category_name, user_name, registered_at`

// PostgresMemeRepo はPostgreSQLを使用したミームリポジトリ。
type PostgresMemeRepo struct {
	db *sql.DB
}

// NewPostgresMemeRepo はPostgresMemeRepoを生成する。
func NewPostgresMemeRepo(db *sql.DB) *PostgresMemeRepo {
	return &PostgresMemeRepo{db: db}
}

// FindAll は全ミームを登録日時の昇順で返す。
func (r *PostgresMemeRepo) FindAll(ctx context.Context) ([]*model.Meme, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+memeColumns+` FROM memes ORDER BY registered_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list memes: %w", err)
	}
	defer rows.Close()

	memes := make([]*model.Meme, 0)
	for rows.Next() {
		m, err := scanMeme(rows)
		if err != nil {
			return nil, err
		}
		memes = append(memes, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate memes: %w", err)
	}

	return memes, nil
}

// FindByID は指定IDのミームを取得する。見つからない場合はnilを返す。
func (r *PostgresMemeRepo) FindByID(ctx context.Context, id string) (*model.Meme, error) {
	return r.findOne(ctx, `SELECT `+memeColumns+` FROM memes WHERE id = $1`, id)
}

// FindByName は指定名のミームのうち最も古いものを取得する。見つからない場合はnilを返す。
func (r *PostgresMemeRepo) FindByName(ctx context.Context, name string) (*model.Meme, error) {
	return r.findOne(ctx,
		`SELECT `+memeColumns+` FROM memes WHERE name = $1 ORDER BY registered_at, id LIMIT 1`,
		name,
	)
}

// FindRandom はランダムに1件のミームを返す。0件の場合はnilを返す。
func (r *PostgresMemeRepo) FindRandom(ctx context.Context) (*model.Meme, error) {
	m, err := scanMeme(r.db.QueryRowContext(ctx,
		`SELECT `+memeColumns+` FROM memes ORDER BY random() LIMIT 1`,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

func (r *PostgresMemeRepo) findOne(ctx context.Context, query string, arg string) (*model.Meme, error) {
	m, err := scanMeme(r.db.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeme(row rowScanner) (*model.Meme, error) {
	m := &model.Meme{}
	err := row.Scan(&m.ID, &m.Name, &m.Description, &m.URL, &m.CategoryName, &m.UserName, &m.RegisteredAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan meme: %w", err)
	}
	return m, nil
}

// Insert はミームを保存する。
func (r *PostgresMemeRepo) Insert(ctx context.Context, meme *model.Meme) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO memes (id, name, description, url, category_name, user_name, registered_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		meme.ID, meme.Name, meme.Description, meme.URL, meme.CategoryName, meme.UserName, meme.RegisteredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert meme: %w", err)
	}
	return nil
}

// DeleteByID は指定IDのミームを削除する。
func (r *PostgresMemeRepo) DeleteByID(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM memes WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete meme: %w", err)
	}
	return affected(result)
}

// DeleteByName は指定名のミームのうち最も古い1件を削除する。
func (r *PostgresMemeRepo) DeleteByName(ctx context.Context, name string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM memes WHERE id = (
		   SELECT id FROM memes WHERE name = $1 ORDER BY registered_at, id LIMIT 1
		 )`,
		name,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete meme: %w", err)
	}
	return affected(result)
}

// compile-time interface check
var _ MemeRepository = (*PostgresMemeRepo)(nil)
