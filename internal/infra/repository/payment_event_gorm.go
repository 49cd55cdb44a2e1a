package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type PaymentEventGormRepository struct {
	db *gorm.DB
}

func NewPaymentEventGormRepository(db *gorm.DB) *PaymentEventGormRepository {
	return &PaymentEventGormRepository{db: db}
}

func (r *PaymentEventGormRepository) FindByEventID(ctx context.Context, eventID string) (model.PaymentEvent, bool, error) {
	var ev model.PaymentEvent
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		First(&ev).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.PaymentEvent{}, false, nil
	}
	if err != nil {
		return model.PaymentEvent{}, false, err
	}
	return ev, true, nil
}

// unique違反はErrDuplicateEvent。
// 「先に読む」チェックは速度最適化で、安全性はこのinsertが持つ。
// insertはネストしたトランザクション（SAVEPOINT）で実行する。
// postgresは文のエラーで外側のトランザクションごとabortするので、
// 素のinsertだと呼び出し側の「重複なら成功扱い」がコミットできない。
func (r *PaymentEventGormRepository) Create(ctx context.Context, ev model.PaymentEvent) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&ev).Error
	})
	if err == nil {
		return nil
	}

	if isUniqueViolation(err) {
		return repo.ErrDuplicateEvent
	}
	return err
}

// postgresのunique_violation(23505)判定
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
