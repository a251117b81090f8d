// Package category はカテゴリ管理のドメインロジックを提供する。
package category

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

const entity = "category"

// CreateInput はカテゴリ作成リクエストの内容。
type CreateInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"required,max=1000"`
}

// Service はカテゴリ管理のサービス層。
// 作成時は名前の一意性を確認してから保存し、作成イベントをベストエフォートで送出する。
type Service struct {
	repo      repository.CategoryRepository
	events    event.Emitter
	recorder  metrics.Recorder
	validator *validation.Validator
	sanitizer security.TextSanitizer
	logger    *slog.Logger
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	repo repository.CategoryRepository,
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

// List は全カテゴリを登録順で返す。
func (s *Service) List(ctx context.Context) ([]*model.Category, error) {
	categories, err := metrics.Instrument(s.recorder, entity, "find_all", nil, func() ([]*model.Category, error) {
		return s.repo.FindAll(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("カテゴリ一覧の取得に失敗しました: %w", err)
	}
	s.recorder.RecordListSize(entity, len(categories))
	return categories, nil
}

// Get は指定IDのカテゴリを返す。存在しない場合はNotFoundエラーを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Category, error) {
	c, err := metrics.Instrument(s.recorder, entity, "find_by_id", metrics.Found[model.Category], func() (*model.Category, error) {
		return s.repo.FindByID(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("カテゴリの取得に失敗しました: %w", err)
	}
	if c == nil {
		return nil, model.NewNotFoundError(model.KindCategory, id)
	}
	return c, nil
}

// GetByName は指定名のカテゴリを返す。存在しない場合はNotFoundエラーを返す。
func (s *Service) GetByName(ctx context.Context, name string) (*model.Category, error) {
	c, err := metrics.Instrument(s.recorder, entity, "find_by_name", metrics.Found[model.Category], func() (*model.Category, error) {
		return s.repo.FindByName(ctx, name)
	})
	if err != nil {
		return nil, fmt.Errorf("カテゴリの取得に失敗しました: %w", err)
	}
	if c == nil {
		return nil, model.NewNotFoundError(model.KindCategory, name)
	}
	return c, nil
}

// Create はカテゴリを作成する。
// 同名のカテゴリが存在する場合はDuplicateNameエラーを返し、何も書き込まない。
// 作成イベントの送出失敗は作成結果に影響しない。
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.Category, error) {
	return metrics.Instrument(s.recorder, entity, "create", metrics.ByError[*model.Category], func() (*model.Category, error) {
		return s.create(ctx, in)
	})
}

func (s *Service) create(ctx context.Context, in CreateInput) (*model.Category, error) {
	in.Name = s.sanitizer.Sanitize(in.Name)
	in.Description = s.sanitizer.Sanitize(in.Description)
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByName(ctx, in.Name)
	if err != nil {
		return nil, fmt.Errorf("カテゴリの重複確認に失敗しました: %w", err)
	}
	if existing != nil {
		s.logger.InfoContext(ctx, "同名のカテゴリが既に存在します", slog.String("name", in.Name))
		return nil, model.NewDuplicateNameError(model.KindCategory, in.Name)
	}

	c := &model.Category{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Description:  in.Description,
		RegisteredAt: s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicateName) {
			return nil, model.NewDuplicateNameError(model.KindCategory, in.Name)
		}
		return nil, fmt.Errorf("カテゴリの保存に失敗しました: %w", err)
	}

	s.logger.InfoContext(ctx, "カテゴリを作成しました",
		slog.String("category_id", c.ID),
		slog.String("name", c.Name),
	)
	snapshot := *c
	s.events.Emit(event.Created(model.KindCategory), &snapshot)

	return c, nil
}

// Delete は指定IDのカテゴリを削除する。存在しなかった場合はfalseを返す。
// カテゴリ名を参照しているミームには影響しない。
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := metrics.Instrument(s.recorder, entity, "delete_by_id", metrics.Deleted, func() (bool, error) {
		return s.repo.DeleteByID(ctx, id)
	})
	if err != nil {
		return false, fmt.Errorf("カテゴリの削除に失敗しました: %w", err)
	}
	if deleted {
		s.logger.InfoContext(ctx, "カテゴリを削除しました", slog.String("category_id", id))
	}
	return deleted, nil
}

// DeleteByName は指定名のカテゴリを削除する。存在しなかった場合はfalseを返す。
func (s *Service) DeleteByName(ctx context.Context, name string) (bool, error) {
	deleted, err := metrics.Instrument(s.recorder, entity, "delete_by_name", metrics.Deleted, func() (bool, error) {
		return s.repo.DeleteByName(ctx, name)
	})
	if err != nil {
		return false, fmt.Errorf("カテゴリの削除に失敗しました: %w", err)
	}
	if deleted {
		s.logger.InfoContext(ctx, "カテゴリを削除しました", slog.String("name", name))
	}
	return deleted, nil
}
