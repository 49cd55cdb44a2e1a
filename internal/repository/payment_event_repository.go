package repository

import (
	"context"

	"app/internal/domain/model"
)

type PaymentEventRepository interface {
	//冪等チェックの高速パス用
	FindByEventID(ctx context.Context, eventID string) (model.PaymentEvent, bool, error)

	//event_idのunique制約が冪等性の本体。
	//重複はErrDuplicateEventを返す。
	Create(ctx context.Context, ev model.PaymentEvent) error
}
