package repository

import (
	"context"

	"app/internal/domain/model"
)

// 商品の取得だけを約束（商品CRUDはこのサービスの範囲外）。
type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (model.Product, error)
}

// チェックアウト確定時の在庫操作。
type InventoryRepository interface {
	//在庫が足りるときだけ減らす（足りなければfalse）
	DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error)
}
