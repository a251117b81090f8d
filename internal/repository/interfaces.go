// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/memelandia/internal/model"
)

// ErrDuplicateName は一意制約のあるnameが既に存在するためInsertが拒否されたことを表す。
// サービス層の事前チェックをすり抜けた同時作成はこのエラーで検出する。
var ErrDuplicateName = errors.New("repository: duplicate name")

// CategoryRepository はカテゴリデータの永続化インターフェース。
type CategoryRepository interface {
	// FindAll は全カテゴリを返す。0件の場合は空スライスを返す。
	FindAll(ctx context.Context) ([]*model.Category, error)

	// FindByID は指定IDのカテゴリを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Category, error)

	// FindByName は名前の完全一致（大文字小文字を区別）でカテゴリを取得する。
	// 見つからない場合はnilを返す。
	FindByName(ctx context.Context, name string) (*model.Category, error)

	// Insert はカテゴリを保存する。同名が既に存在する場合はErrDuplicateNameを返す。
	Insert(ctx context.Context, category *model.Category) error

	// DeleteByID は指定IDのカテゴリを削除する。削除した場合はtrueを返す。
	DeleteByID(ctx context.Context, id string) (bool, error)

	// DeleteByName は指定名のカテゴリを削除する。削除した場合はtrueを返す。
	DeleteByName(ctx context.Context, name string) (bool, error)
}

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindAll は全ユーザーを返す。0件の場合は空スライスを返す。
	FindAll(ctx context.Context) ([]*model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByName は名前の完全一致でユーザーを取得する。見つからない場合はnilを返す。
	FindByName(ctx context.Context, name string) (*model.User, error)

	// Insert はユーザーを保存する。同名が既に存在する場合はErrDuplicateNameを返す。
	// emailの重複は検査しない。
	Insert(ctx context.Context, user *model.User) error

	// DeleteByID は指定IDのユーザーを削除する。削除した場合はtrueを返す。
	DeleteByID(ctx context.Context, id string) (bool, error)

	// DeleteByName は指定名のユーザーを削除する。削除した場合はtrueを返す。
	DeleteByName(ctx context.Context, name string) (bool, error)
}

// MemeRepository はミームデータの永続化インターフェース。
// ミーム名の重複は許可する。
type MemeRepository interface {
	// FindAll は全ミームを返す。0件の場合は空スライスを返す。
	FindAll(ctx context.Context) ([]*model.Meme, error)

	// FindByID は指定IDのミームを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Meme, error)

	// FindByName は名前の完全一致でミームを取得する。同名が複数ある場合は最も古いものを返す。
	// 見つからない場合はnilを返す。
	FindByName(ctx context.Context, name string) (*model.Meme, error)

	// FindRandom は全ミームから一様ランダムに1件を返す。0件の場合はnilを返す。
	FindRandom(ctx context.Context) (*model.Meme, error)

	// Insert はミームを保存する。
	Insert(ctx context.Context, meme *model.Meme) error

	// DeleteByID は指定IDのミームを削除する。削除した場合はtrueを返す。
	DeleteByID(ctx context.Context, id string) (bool, error)

	// DeleteByName は指定名のミームを削除する。同名が複数ある場合は最も古い1件のみ削除する。
	DeleteByName(ctx context.Context, name string) (bool, error)
}
