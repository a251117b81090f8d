package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, conflict, reference, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeDuplicateName     = "DUPLICATE_NAME"
	ErrCodeCategoryNotFound  = "CATEGORY_NOT_FOUND"
	ErrCodeUserNotFound      = "USER_NOT_FOUND"
	ErrCodeMemeNotFound      = "MEME_NOT_FOUND"
	ErrCodeNoDataAvailable   = "NO_DATA_AVAILABLE"
	ErrCodeInvalidID         = "INVALID_ID"
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
)

// NewInvalidRequestError はリクエスト内容の検証エラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "必須項目がすべて入力されているか確認してください。",
	}
}

// NewDuplicateNameError は同名エンティティが既に存在する場合のエラーを生成する。
func NewDuplicateNameError(kind EntityKind, name string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateName,
		Message:  fmt.Sprintf("同じ名前の%sが既に存在します: %s", kind, name),
		Category: "conflict",
		Action:   "別の名前を指定してください。",
	}
}

// NewNotFoundError は指定されたエンティティが見つからない場合のエラーを生成する。
func NewNotFoundError(kind EntityKind, key string) *APIError {
	return &APIError{
		Code:     notFoundCode(kind),
		Message:  fmt.Sprintf("指定された%sが見つかりません: %s", kind, key),
		Category: "reference",
		Action:   "IDまたは名前を確認してください。",
	}
}

// NewNoDataAvailableError はミームが1件も登録されていない場合のエラーを生成する。
func NewNoDataAvailableError() *APIError {
	return &APIError{
		Code:     ErrCodeNoDataAvailable,
		Message:  "ミームが1件も登録されていません。",
		Category: "reference",
		Action:   "ミームを登録してから再度お試しください。",
	}
}

// NewInvalidIDError はIDの形式が不正な場合のエラーを生成する。
func NewInvalidIDError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidID,
		Message:  fmt.Sprintf("IDの形式が不正です: %s", id),
		Category: "validation",
		Action:   "UUID形式のIDを指定してください。",
	}
}

// ReferenceNotFoundError はミーム作成時に参照先のカテゴリまたはユーザーが
// リモートサービスに存在しなかったことを表す。書き込み前に返される。
type ReferenceNotFoundError struct {
	Kind EntityKind
	Name string
}

// Error はerrorインターフェースを実装する。
func (e *ReferenceNotFoundError) Error() string {
	return fmt.Sprintf("referenced %s not found: %s", e.Kind, e.Name)
}

// APIError はクライアント向けの統一エラーフォーマットに変換する。
func (e *ReferenceNotFoundError) APIError() *APIError {
	return &APIError{
		Code:     notFoundCode(e.Kind),
		Message:  fmt.Sprintf("参照先の%sが存在しません: %s", e.Kind, e.Name),
		Category: "reference",
		Action:   "登録済みのカテゴリ名とユーザー名を指定してください。",
	}
}

// TransportError はリモートサービスとの通信失敗を表す。
// 「見つからない」以外のすべての失敗（タイムアウト、接続拒否、想定外のステータス）を含み、
// 現在のリクエストにとって致命的なエラーとして扱う。リトライはしない。
type TransportError struct {
	Service string
	Err     error
}

// Error はerrorインターフェースを実装する。
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s service unavailable: %v", e.Service, e.Err)
}

// Unwrap は元のエラーを返す。
func (e *TransportError) Unwrap() error {
	return e.Err
}

func notFoundCode(kind EntityKind) string {
	switch kind {
	case KindCategory:
		return ErrCodeCategoryNotFound
	case KindUser:
		return ErrCodeUserNotFound
	default:
		return ErrCodeMemeNotFound
	}
}
