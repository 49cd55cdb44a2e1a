package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return 0, err
	}
	return order.ID, nil
}

// 決済確定の反映。同じ値の再適用は無害（冪等ゲートは呼び出し側）。
func (r *OrderGormRepository) ApplySettlement(ctx context.Context, orderID int64, upd repo.SettlementUpdate) error {
	values := map[string]interface{}{
		"payment_status": model.PaymentStatusPaid,
		"status":         model.OrderStatusCompleted,
		"user_id":        upd.UserID,
	}
	if upd.PaymentReference != "" {
		values["payment_reference"] = upd.PaymentReference
	}
	if upd.SubscriptionType != "" {
		values["subscription_type"] = upd.SubscriptionType
	}

	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(values)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) SetPaymentReference(ctx context.Context, orderID int64, ref string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("payment_reference", ref)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) FindByPaymentReference(ctx context.Context, ref string) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Where("payment_reference = ?", ref).
		Order("id desc").
		First(&o).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

// 一回送信ゲート。nullの行だけ更新し、0件なら送信済み扱い。
func (r *OrderGormRepository) MarkConfirmationEmailSent(ctx context.Context, orderID int64, sentAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND confirmation_email_sent_at IS NULL", orderID).
		Update("confirmation_email_sent_at", sentAt)

	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
