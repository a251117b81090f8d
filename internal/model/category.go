package model

import "time"

// Category はミームのカテゴリを表す。
// nameは全カテゴリで一意。作成後は変更されない。
type Category struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	RegisteredAt time.Time `json:"registered_at"`
}
