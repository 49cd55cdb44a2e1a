package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type ChatLeadGormRepository struct {
	db *gorm.DB
}

func NewChatLeadGormRepository(db *gorm.DB) *ChatLeadGormRepository {
	return &ChatLeadGormRepository{db: db}
}

func (r *ChatLeadGormRepository) Create(ctx context.Context, lead *model.ChatLead) error {
	if err := r.db.WithContext(ctx).Create(lead).Error; err != nil {
		return err
	}
	return nil
}

func (r *ChatLeadGormRepository) FindByID(ctx context.Context, id int64) (model.ChatLead, error) {
	var lead model.ChatLead
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&lead).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ChatLead{}, repo.ErrNotFound
	}
	if err != nil {
		return model.ChatLead{}, err
	}
	return lead, nil
}

func (r *ChatLeadGormRepository) UpdateEmailSentStatus(ctx context.Context, id int64, status model.EmailSentStatus, sendErr string) error {
	res := r.db.WithContext(ctx).
		Model(&model.ChatLead{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"email_sent_status": status,
			"email_sent_error":  sendErr,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

type EmailJobGormRepository struct {
	db *gorm.DB
}

func NewEmailJobGormRepository(db *gorm.DB) *EmailJobGormRepository {
	return &EmailJobGormRepository{db: db}
}

func (r *EmailJobGormRepository) Enqueue(ctx context.Context, job *model.EmailJob) error {
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return err
	}
	return nil
}

// 送信期限が来ているQUEUED/FAILEDを古い順に取る
func (r *EmailJobGormRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]model.EmailJob, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var jobs []model.EmailJob
	err := r.db.WithContext(ctx).
		Where("status IN ? AND next_attempt_at <= ?",
			[]model.EmailJobStatus{model.EmailJobStatusQueued, model.EmailJobStatusFailed}, now).
		Order("id asc").
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return []model.EmailJob{}, err
	}
	return jobs, nil
}

func (r *EmailJobGormRepository) MarkSent(ctx context.Context, jobID int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.EmailJob{}).
		Where("id = ?", jobID).
		Update("status", model.EmailJobStatusSent)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *EmailJobGormRepository) MarkFailed(ctx context.Context, jobID int64, attempts int, nextAttemptAt time.Time, lastError string) error {
	res := r.db.WithContext(ctx).
		Model(&model.EmailJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":          model.EmailJobStatusFailed,
			"attempts":        attempts,
			"next_attempt_at": nextAttemptAt,
			"last_error":      lastError,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *EmailJobGormRepository) MarkDead(ctx context.Context, jobID int64, lastError string) error {
	res := r.db.WithContext(ctx).
		Model(&model.EmailJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":     model.EmailJobStatusDead,
			"last_error": lastError,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
