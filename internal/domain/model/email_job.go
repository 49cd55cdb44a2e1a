package model

import "time"

type EmailJobKind string

const (
	EmailJobKindChatThanks EmailJobKind = "CHAT_THANKS"
)

type EmailJobStatus string

const (
	EmailJobStatusQueued EmailJobStatus = "QUEUED"
	EmailJobStatusSent   EmailJobStatus = "SENT"
	EmailJobStatusFailed EmailJobStatus = "FAILED"
	//リトライ上限到達。ワーカーは二度と拾わない。
	EmailJobStatusDead EmailJobStatus = "DEAD"
)

// メール送信ジョブ（DB常駐のアウトボックス）。
// プロセス内キューと違い、再起動しても失われない。
// 失敗したジョブは next_attempt_at まで待ってから再試行する。
type EmailJob struct {
	ID            int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Kind          EmailJobKind   `gorm:"type:varchar(30);not null" json:"kind"`
	ChatLeadID    *int64         `gorm:"index" json:"chat_lead_id"`
	Recipient     string         `gorm:"type:varchar(255);not null" json:"recipient"`
	Subject       string         `gorm:"type:varchar(255);not null" json:"subject"`
	Body          string         `gorm:"type:text" json:"body"`
	Status        EmailJobStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Attempts      int            `gorm:"not null;default:0" json:"attempts"`
	NextAttemptAt time.Time      `gorm:"not null;index" json:"next_attempt_at"`
	LastError     string         `gorm:"type:varchar(500)" json:"last_error"`
	CreatedAt     time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
