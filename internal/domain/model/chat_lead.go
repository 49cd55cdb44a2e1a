package model

import "time"

type EmailSentStatus string

const (
	EmailSentStatusPending EmailSentStatus = "PENDING"
	EmailSentStatusSent    EmailSentStatus = "SENT"
	EmailSentStatusFailed  EmailSentStatus = "FAILED"
)

// チャット問い合わせのリード。
// email_sent_status はお礼メールの送信状態（二重送信防止の再確認に使う）。
type ChatLead struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string          `gorm:"type:varchar(255)" json:"name"`
	Email           string          `gorm:"type:varchar(255);not null;index" json:"email"`
	Message         string          `gorm:"type:text" json:"message"`
	EmailSentStatus EmailSentStatus `gorm:"type:varchar(20);not null;index" json:"email_sent_status"`
	EmailSentError  string          `gorm:"type:varchar(500)" json:"email_sent_error"`
	CreatedAt       time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
