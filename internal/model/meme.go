package model

import "time"

// Meme はカテゴリとユーザーを名前で参照するミームを表す。
// CategoryName/UserNameは作成時点でのみ存在確認を行う非正規化された文字列で、
// 参照先が後から削除・改名されても追従しない。
type Meme struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	URL          string    `json:"url"`
	CategoryName string    `json:"category_name"`
	UserName     string    `json:"user_name"`
	RegisteredAt time.Time `json:"registered_at"`
}
