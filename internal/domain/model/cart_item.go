package model

import "time"

// カートの明細
// (cart_id, product_id) は一意。同じ商品の追加は数量加算になる。
// 追加時点の価格を必ず保存。
type CartItem struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID            int64     `gorm:"not null;uniqueIndex:uq_cart_product" json:"cart_id"`
	ProductID         int64     `gorm:"not null;uniqueIndex:uq_cart_product" json:"product_id"`
	Quantity          int64     `gorm:"not null" json:"quantity"`
	UnitPriceSnapshot int64     `gorm:"not null;column:unit_price_snapshot" json:"unit_price_snapshot"`
	CreatedAt         time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
