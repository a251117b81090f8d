package model

import "time"

// User はミームを投稿するユーザーを表す。
// nameは一意。emailは形式のみ検証し、既存レコードとの重複は確認しない。
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registered_at"`
}
