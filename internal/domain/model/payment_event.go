package model

import "time"

// 決済プロバイダのイベント台帳（追記専用）。
// event_id のunique制約が冪等性の本体。同じイベントの2回目以降はDBが弾く。
type PaymentEvent struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Provider   string    `gorm:"type:varchar(50);not null" json:"provider"`
	EventID    string    `gorm:"type:varchar(128);not null;uniqueIndex" json:"event_id"`
	OrderID    int64     `gorm:"not null;index" json:"order_id"`
	Status     string    `gorm:"type:varchar(50)" json:"status"`
	RawPayload string    `gorm:"type:text" json:"raw_payload"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
