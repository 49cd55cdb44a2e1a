package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

type ChatLeadRepository interface {
	Create(ctx context.Context, lead *model.ChatLead) error
	FindByID(ctx context.Context, id int64) (model.ChatLead, error)
	UpdateEmailSentStatus(ctx context.Context, id int64, status model.EmailSentStatus, sendErr string) error
}

type EmailJobRepository interface {
	Enqueue(ctx context.Context, job *model.EmailJob) error

	//QUEUED/FAILEDでnext_attempt_atを過ぎたものを取る
	ListDue(ctx context.Context, now time.Time, limit int) ([]model.EmailJob, error)

	MarkSent(ctx context.Context, jobID int64) error
	//attemptsを進めて次回時刻を設定
	MarkFailed(ctx context.Context, jobID int64, attempts int, nextAttemptAt time.Time, lastError string) error
	MarkDead(ctx context.Context, jobID int64, lastError string) error
}
