// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizer はAPIが受け取るテキスト項目からHTMLを取り除く。
// 保存するのはプレーンテキストのみで、マークアップは一切許可しない。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer はテキスト項目のサニタイズ機能のインターフェースを定義する。
type TextSanitizer interface {
	// Sanitize はすべてのHTMLタグを除去し、前後の空白を取り除いたプレーンテキストを返す。
	// script/styleなどの要素は中身ごと除去される。
	// エンティティは元の文字に戻すため、"Tom & Jerry" はそのまま保存される。
	Sanitize(s string) string
}

// textSanitizer はTextSanitizerの実装。
// bluemondayのポリシーはスレッドセーフで、複数のリクエストから共有できる。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はStrictPolicyを使うTextSanitizerを生成する。
func NewTextSanitizer() TextSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はHTMLを除去したプレーンテキストを返す。
func (s *textSanitizer) Sanitize(in string) string {
	if in == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(in)))
}
