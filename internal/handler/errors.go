// Package handler はREST APIのHTTPハンドラーとルーティングを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hitoshi/memelandia/internal/middleware"
	"github.com/hitoshi/memelandia/internal/model"
)

// maxBodyBytes はリクエストボディの上限サイズ。
const maxBodyBytes = 1 << 20

// writeJSON はステータスコードとJSONボディを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// decodeJSON はリクエストボディをJSONとしてデコードする。
// 失敗した場合は400レスポンスを書き込みfalseを返す。
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     model.ErrCodeInvalidRequest,
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return false
	}
	return true
}

// parseID はパスパラメータのIDをUUIDとして検証する。
// 不正な形式の場合は400レスポンスを書き込みfalseを返す。
func parseID(w http.ResponseWriter, raw string) (string, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidIDError(raw))
		return "", false
	}
	return id.String(), true
}

// nameParam はパスパラメータの名前を復号して返す。
// chiはRawPathが設定されている場合エスケープされたままの値を渡すため、ここで復号する。
// 復号できない場合は400レスポンスを書き込みfalseを返す。
func nameParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return raw, true
	}
	name, err := url.PathUnescape(raw)
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     model.ErrCodeInvalidRequest,
			Message:  "名前のエンコードが不正です。",
			Category: "validation",
			Action:   "名前をパーセントエンコードしてリクエストしてください。",
		})
		return "", false
	}
	return name, true
}

// writeDeleteResult は削除結果に応じて204または404を書き込む。
func writeDeleteResult(w http.ResponseWriter, deleted bool, kind model.EntityKind, key string) {
	if !deleted {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewNotFoundError(kind, key))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var refErr *model.ReferenceNotFoundError
	if errors.As(err, &refErr) {
		middleware.WriteErrorResponse(w, http.StatusUnprocessableEntity, refErr.APIError())
		return
	}

	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// 通信失敗を含むそれ以外のエラーは詳細をログのみに残す
	attrs := []any{slog.String("error", err.Error()), slog.String("path", r.URL.Path)}
	var transportErr *model.TransportError
	if errors.As(err, &transportErr) {
		attrs = append(attrs, slog.String("remote_service", transportErr.Service))
	}
	slog.ErrorContext(r.Context(), "internal server error", attrs...)
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidRequest, model.ErrCodeInvalidID:
		return http.StatusBadRequest
	case model.ErrCodeDuplicateName:
		return http.StatusConflict
	case model.ErrCodeCategoryNotFound, model.ErrCodeUserNotFound, model.ErrCodeMemeNotFound,
		model.ErrCodeNoDataAvailable:
		return http.StatusNotFound
	case model.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
