package repository

import (
	"context"

	"app/internal/domain/model"
)

type CartRepository interface {
	//ACTIVEカートを取得し、無ければ作成（同一キーの同時リクエストでも1つ）
	GetOrCreateActiveBySessionKey(ctx context.Context, sessionKey string) (model.Cart, error)
	FindActiveBySessionKey(ctx context.Context, sessionKey string) (model.Cart, error)
	UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error
	Clear(ctx context.Context, cartID int64) error
}
