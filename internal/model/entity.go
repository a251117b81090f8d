// Package model はドメインモデルを定義する。
package model

// EntityKind はエンティティの種別を表す。
// メトリクスのラベル、イベントのトピック名、エラーメッセージで共通に使用する。
type EntityKind string

const (
	// KindCategory はカテゴリを表す。
	KindCategory EntityKind = "category"
	// KindUser はユーザーを表す。
	KindUser EntityKind = "user"
	// KindMeme はミームを表す。
	KindMeme EntityKind = "meme"
)

// String はEntityKindの文字列表現を返す。
func (k EntityKind) String() string {
	return string(k)
}
