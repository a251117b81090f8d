// Package lookup はカテゴリサービス・ユーザーサービスへの名前による存在確認を提供する。
package lookup

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hitoshi/memelandia/internal/model"
)

// Client はリモートのエンティティサービスに名前で問い合わせるクライアント。
// 200は存在、404は不存在、それ以外はすべて通信失敗として扱う。リトライはしない。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	kind       model.EntityKind
	baseURL    string
	collection string // "categories" または "users"
}

// NewCategoryClient はカテゴリサービス向けのClientを生成する。
func NewCategoryClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	return newClient(model.KindCategory, "categories", baseURL, httpClient, logger)
}

// NewUserClient はユーザーサービス向けのClientを生成する。
func NewUserClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	return newClient(model.KindUser, "users", baseURL, httpClient, logger)
}

func newClient(kind model.EntityKind, collection, baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		kind:       kind,
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
	}
}

// NewHTTPClient は問い合わせ用のhttp.Clientを生成する。timeoutは1回の問い合わせ全体の上限。
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// Kind は問い合わせ先のエンティティ種別を返す。
func (c *Client) Kind() model.EntityKind {
	return c.kind
}

// Exists は指定名のエンティティがリモートに存在するかを返す。
// 通信失敗や想定外のステータスは*model.TransportErrorとして返す。
func (c *Client) Exists(ctx context.Context, name string) (bool, error) {
	reqURL := fmt.Sprintf("%s/%s/name/%s", c.baseURL, c.collection, url.PathEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return false, c.transportError(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "memelandia-meme/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "リモート問い合わせに失敗しました",
			slog.String("kind", c.kind.String()),
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return false, c.transportError(err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		c.logger.ErrorContext(ctx, "リモートサービスが想定外のステータスを返しました",
			slog.String("kind", c.kind.String()),
			slog.String("name", name),
			slog.Int("http_status", resp.StatusCode),
		)
		return false, c.transportError(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
}

func (c *Client) transportError(err error) error {
	return &model.TransportError{Service: c.kind.String(), Err: err}
}
