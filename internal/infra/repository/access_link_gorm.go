package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AccessLinkGormRepository struct {
	db *gorm.DB
}

func NewAccessLinkGormRepository(db *gorm.DB) *AccessLinkGormRepository {
	return &AccessLinkGormRepository{db: db}
}

// tokenで挿入、衝突したら期限延長＋used_atクリア。
// 既存行のorder_idはそのまま残す（最初に発行された注文との紐付けを保つ）。
func (r *AccessLinkGormRepository) UpsertByToken(ctx context.Context, link model.UserAccessLink) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "token"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"expires_at": link.ExpiresAt,
				"used_at":    nil,
				"updated_at": time.Now(),
			}),
		}).
		Create(&link).Error
}

func (r *AccessLinkGormRepository) FindByToken(ctx context.Context, token string) (model.UserAccessLink, error) {
	var link model.UserAccessLink

	err := r.db.WithContext(ctx).
		Where("token = ?", token).
		First(&link).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.UserAccessLink{}, repo.ErrNotFound
	}
	if err != nil {
		return model.UserAccessLink{}, err
	}
	return link, nil
}

func (r *AccessLinkGormRepository) MarkUsed(ctx context.Context, linkID int64, usedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.UserAccessLink{}).
		Where("id = ?", linkID).
		Update("used_at", usedAt)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
