// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/memelandia/internal/event"
	"github.com/hitoshi/memelandia/internal/metrics"
	"github.com/hitoshi/memelandia/internal/model"
	"github.com/hitoshi/memelandia/internal/repository"
	"github.com/hitoshi/memelandia/internal/security"
	"github.com/hitoshi/memelandia/internal/validation"
)

const entity = "user"

// CreateInput はユーザー作成リクエストの内容。
type CreateInput struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email,max=254"`
}

// Service はユーザー管理のサービス層。
// 名前の一意性は作成時に確認するが、emailは形式のみ検証し既存ユーザーとの重複は確認しない。
type Service struct {
	repo      repository.UserRepository
	events    event.Emitter
	recorder  metrics.Recorder
	validator *validation.Validator
	sanitizer security.TextSanitizer
	logger    *slog.Logger
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	repo repository.UserRepository,
	events event.Emitter,
	recorder metrics.Recorder,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Service{
		repo:      repo,
		events:    events,
		recorder:  recorder,
		validator: validation.New(),
		sanitizer: security.NewTextSanitizer(),
		logger:    logger,
		now:       time.Now,
	}
}

// List は全ユーザーを登録順で返す。
func (s *Service) List(ctx context.Context) ([]*model.User, error) {
	users, err := metrics.Instrument(s.recorder, entity, "find_all", nil, func() ([]*model.User, error) {
		return s.repo.FindAll(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}
	s.recorder.RecordListSize(entity, len(users))
	return users, nil
}

// Get は指定IDのユーザーを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.User, error) {
	u, err := metrics.Instrument(s.recorder, entity, "find_by_id", metrics.Found[model.User], func() (*model.User, error) {
		return s.repo.FindByID(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if u == nil {
		return nil, model.NewNotFoundError(model.KindUser, id)
	}
	return u, nil
}

// GetByName は指定名のユーザーを返す。
// ミームサービスからの参照確認もこの操作を経由する。
func (s *Service) GetByName(ctx context.Context, name string) (*model.User, error) {
	u, err := metrics.Instrument(s.recorder, entity, "find_by_name", metrics.Found[model.User], func() (*model.User, error) {
		return s.repo.FindByName(ctx, name)
	})
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if u == nil {
		return nil, model.NewNotFoundError(model.KindUser, name)
	}
	return u, nil
}

// Create はユーザーを作成する。同名のユーザーが存在する場合はDuplicateNameエラーを返す。
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.User, error) {
	return metrics.Instrument(s.recorder, entity, "create", metrics.ByError[*model.User], func() (*model.User, error) {
		return s.create(ctx, in)
	})
}

func (s *Service) create(ctx context.Context, in CreateInput) (*model.User, error) {
	in.Name = s.sanitizer.Sanitize(in.Name)
	in.Email = s.sanitizer.Sanitize(in.Email)
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByName(ctx, in.Name)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの重複確認に失敗しました: %w", err)
	}
	if existing != nil {
		s.logger.InfoContext(ctx, "同名のユーザーが既に存在します", slog.String("name", in.Name))
		return nil, model.NewDuplicateNameError(model.KindUser, in.Name)
	}

	u := &model.User{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Email:        in.Email,
		RegisteredAt: s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateName) {
			return nil, model.NewDuplicateNameError(model.KindUser, in.Name)
		}
		return nil, fmt.Errorf("ユーザーの保存に失敗しました: %w", err)
	}

	s.logger.InfoContext(ctx, "ユーザーを作成しました",
		slog.String("user_id", u.ID),
		slog.String("name", u.Name),
	)
	snapshot := *u
	s.events.Emit(event.Created(model.KindUser), &snapshot)

	return u, nil
}

// Delete は指定IDのユーザーを削除する。存在しなかった場合はfalseを返す。
// ユーザー名を参照しているミームは残る。
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := metrics.Instrument(s.recorder, entity, "delete_by_id", metrics.Deleted, func() (bool, error) {
		return s.repo.DeleteByID(ctx, id)
	})
	if err != nil {
		return false, fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}
	if deleted {
		s.logger.InfoContext(ctx, "ユーザーを削除しました", slog.String("user_id", id))
	}
	return deleted, nil
}

// DeleteByName は指定名のユーザーを削除する。存在しなかった場合はfalseを返す。
func (s *Service) DeleteByName(ctx context.Context, name string) (bool, error) {
	deleted, err := metrics.Instrument(s.recorder, entity, "delete_by_name", metrics.Deleted, func() (bool, error) {
		return s.repo.DeleteByName(ctx, name)
	})
	if err != nil {
		return false, fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}
	if deleted {
		s.logger.InfoContext(ctx, "ユーザーを削除しました", slog.String("name", name))
	}
	return deleted, nil
}
