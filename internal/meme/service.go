// Package meme はミーム管理のドメインロジックを提供する。
// ミームの作成はカテゴリサービスとユーザーサービスへの参照確認を経てから保存する。
package meme

import (
	"context"
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

const entity = "meme"

// CreateInput はミーム作成リクエストの内容。
type CreateInput struct {
	Name         string `json:"name" validate:"required,max=200"`
	Description  string `json:"description" validate:"required,max=1000"`
	URL          string `json:"url" validate:"required,http_url,max=2048"`
	CategoryName string `json:"category_name" validate:"required,max=100"`
	UserName     string `json:"user_name" validate:"required,max=100"`
}

// Service はミーム管理のサービス層。
type Service struct {
	repo       repository.MemeRepository
	references *ReferenceValidator
	events     event.Emitter
	recorder   metrics.Recorder
	validator  *validation.Validator
	sanitizer  security.TextSanitizer
	logger     *slog.Logger
	now        func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	repo repository.MemeRepository,
	references *ReferenceValidator,
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
		repo:       repo,
		references: references,
		events:     events,
		recorder:   recorder,
		validator:  validation.New(),
		sanitizer:  security.NewTextSanitizer(),
		logger:     logger,
		now:        time.Now,
	}
}

// List は全ミームを登録順で返す。
func (s *Service) List(ctx context.Context) ([]*model.Meme, error) {
	memes, err := metrics.Instrument(s.recorder, entity, "find_all", nil, func() ([]*model.Meme, error) {
		return s.repo.FindAll(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("ミーム一覧の取得に失敗しました: %w", err)
	}
	s.recorder.RecordListSize(entity, len(memes))
	return memes, nil
}

// Get は指定IDのミームを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Meme, error) {
	m, err := metrics.Instrument(s.recorder, entity, "find_by_id", metrics.Found[model.Meme], func() (*model.Meme, error) {
		return s.repo.FindByID(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("ミームの取得に失敗しました: %w", err)
	}
	if m == nil {
		return nil, model.NewNotFoundError(model.KindMeme, id)
	}
	return m, nil
}

// GetByName は指定名のミームを返す。同名が複数ある場合は最も古いもの。
func (s *Service) GetByName(ctx context.Context, name string) (*model.Meme, error) {
	m, err := metrics.Instrument(s.recorder, entity, "find_by_name", metrics.Found[model.Meme], func() (*model.Meme, error) {
		return s.repo.FindByName(ctx, name)
	})
	if err != nil {
		return nil, fmt.Errorf("ミームの取得に失敗しました: %w", err)
	}
	if m == nil {
		return nil, model.NewNotFoundError(model.KindMeme, name)
	}
	return m, nil
}

// Create はミームを作成する。
// 参照するカテゴリ、ユーザーの順にリモートで存在を確認し、どちらかが見つからなければ
// 何も書き込まずに*model.ReferenceNotFoundErrorを返す。通信失敗はそのまま返す。
// ミーム名の重複は確認しない。
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.Meme, error) {
	return metrics.Instrument(s.recorder, entity, "create", metrics.ByError[*model.Meme], func() (*model.Meme, error) {
		return s.create(ctx, in)
	})
}

func (s *Service) create(ctx context.Context, in CreateInput) (*model.Meme, error) {
	in.Name = s.sanitizer.Sanitize(in.Name)
	in.Description = s.sanitizer.Sanitize(in.Description)
	in.URL = s.sanitizer.Sanitize(in.URL)
	// 参照名は完全一致で照合するため加工しない
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	if err := s.references.Validate(ctx, in.CategoryName, in.UserName); err != nil {
		s.logger.WarnContext(ctx, "ミームの参照確認に失敗しました",
			slog.String("name", in.Name),
			slog.String("category_name", in.CategoryName),
			slog.String("user_name", in.UserName),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	m := &model.Meme{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Description:  in.Description,
		URL:          in.URL,
		CategoryName: in.CategoryName,
		UserName:     in.UserName,
		RegisteredAt: s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, m); err != nil {
		return nil, fmt.Errorf("ミームの保存に失敗しました: %w", err)
	}

	s.logger.InfoContext(ctx, "ミームを作成しました",
		slog.String("meme_id", m.ID),
		slog.String("name", m.Name),
	)
	snapshot := *m
	s.events.Emit(event.Created(model.KindMeme), &snapshot)

	return m, nil
}

// OfTheDay は全ミームから一様ランダムに1件を返す。
// 1件もない場合はNoDataAvailableエラーを返す。連続した呼び出しで同じミームが返ることもある。
func (s *Service) OfTheDay(ctx context.Context) (*model.Meme, error) {
	m, err := metrics.Instrument(s.recorder, entity, "of_the_day", ofTheDayOutcome, func() (*model.Meme, error) {
		return s.repo.FindRandom(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("ミームの抽選に失敗しました: %w", err)
	}
	if m == nil {
		return nil, model.NewNoDataAvailableError()
	}
	return m, nil
}

// Delete は指定IDのミームを削除する。存在しなかった場合はfalseを返す。
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := metrics.Instrument(s.recorder, entity, "delete_by_id", metrics.Deleted, func() (bool, error) {
		return s.repo.DeleteByID(ctx, id)
	})
	if err != nil {
		return false, fmt.Errorf("ミームの削除に失敗しました: %w", err)
	}
	if deleted {
		s.logger.InfoContext(ctx, "ミームを削除しました", slog.String("meme_id", id))
	}
	return deleted, nil
}

// DeleteByName は指定名のミームのうち最も古い1件を削除する。存在しなかった場合はfalseを返す。
func (s *Service) DeleteByName(ctx context.Context, name string) (bool, error) {
	deleted, err := metrics.Instrument(s.recorder, entity, "delete_by_name", metrics.Deleted, func() (bool, error) {
		return s.repo.DeleteByName(ctx, name)
	})
	if err != nil {
		return false, fmt.Errorf("ミームの削除に失敗しました: %w", err)
	}
	if deleted {
		s.logger.InfoContext(ctx, "ミームを削除しました", slog.String("name", name))
	}
	return deleted, nil
}

func ofTheDayOutcome(m *model.Meme, err error) string {
	if err == nil && m == nil {
		return metrics.OutcomeEmpty
	}
	return metrics.Found(m, err)
}
