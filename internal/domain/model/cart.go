package model

import "time"

type CartStatus string

const (
	CartStatusActive  CartStatus = "ACTIVE"
	CartStatusOrdered CartStatus = "ORDERED"
)

// 1セッションキーにつきACTIVEは1つ（unique部分インデックスはmigrate.goで張る）
// ORDEREDになったら変更不可
type Cart struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionKey string     `gorm:"type:varchar(64);not null;index" json:"session_key"`
	Status     CartStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt  time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
