package model

import "time"

type AuditAction string

const (
	//確認メールの再送（管理者の手動リカバリ）
	AuditActionResendConfirmation AuditAction = "RESEND_CONFIRMATION"
)

type AuditResourceType string

const (
	AuditResourceOrder AuditResourceType = "order"
)

// 管理者操作ログ。
// 「誰が」「何を」「どの対象に」行ったかを残す。
type AuditLog struct {
	ID           int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorUserID  int64             `gorm:"not null;index" json:"actor_user_id"`
	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`
	ResourceID   int64             `gorm:"not null;index" json:"resource_id"`

	//JSON文字列で保存する。
	DetailJSON string `gorm:"type:text" json:"detail_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
