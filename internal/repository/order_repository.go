package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

// 決済確定で注文に反映する値。
type SettlementUpdate struct {
	PaymentReference string
	SubscriptionType string
	UserID           int64
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	Create(ctx context.Context, order model.Order) (int64, error)

	//PAID/COMPLETEDへ更新。同じ値の再適用は無害。
	ApplySettlement(ctx context.Context, orderID int64, upd SettlementUpdate) error

	//payment_referenceを付与（PayPalの注文作成時）
	SetPaymentReference(ctx context.Context, orderID int64, ref string) error
	FindByPaymentReference(ctx context.Context, ref string) (model.Order, error)

	//confirmation_email_sent_at IS NULL の行だけ更新。
	//falseなら既に送信済み（一回送信ゲート）。
	MarkConfirmationEmailSent(ctx context.Context, orderID int64, sentAt time.Time) (bool, error)
}
