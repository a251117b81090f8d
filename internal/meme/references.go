package meme

import (
	"context"
	"fmt"

	"github.com/hitoshi/memelandia/internal/model"
)

// ReferenceChecker はリモートサービスに名前でエンティティの存在を問い合わせる。
// 不存在は(false, nil)、それ以外の失敗は*model.TransportErrorで返す。
type ReferenceChecker interface {
	Exists(ctx context.Context, name string) (bool, error)
}

// ReferenceValidator はミームが参照するカテゴリとユーザーの存在を確認する。
// カテゴリ→ユーザーの順に1回ずつ問い合わせ、最初の失敗で打ち切る。
type ReferenceValidator struct {
	categories ReferenceChecker
	users      ReferenceChecker
}

// NewReferenceValidator はReferenceValidatorを生成する。
func NewReferenceValidator(categories, users ReferenceChecker) *ReferenceValidator {
	return &ReferenceValidator{categories: categories, users: users}
}

// Validate は両方の参照が解決できればnilを返す。
// 見つからない場合は*model.ReferenceNotFoundError、通信失敗はそのまま返す。
func (v *ReferenceValidator) Validate(ctx context.Context, categoryName, userName string) error {
	if err := check(ctx, v.categories, model.KindCategory, categoryName); err != nil {
		return err
	}
	return check(ctx, v.users, model.KindUser, userName)
}

func check(ctx context.Context, checker ReferenceChecker, kind model.EntityKind, name string) error {
	ok, err := checker.Exists(ctx, name)
	if err != nil {
		return fmt.Errorf("%sの存在確認に失敗しました: %w", kind, err)
	}
	if !ok {
		return &model.ReferenceNotFoundError{Kind: kind, Name: name}
	}
	return nil
}
