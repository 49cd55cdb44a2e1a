package db

import (
	"gorm.io/gorm"

	"app/internal/domain/model"
)

// AutoMigrateのタグでは張れないインデックスはここに足す。
var extraIndexes = []string{
	//1セッションキーにつきACTIVEカートは1つ。
	//同時リクエストの片方がunique違反で負け、get-or-createの再検索パスに入る
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_carts_session_key_active ON carts (session_key) WHERE status = 'ACTIVE'`,
}

// Migrate はスキーマと追加インデックスを揃える。
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.PaymentEvent{},
		&model.User{},
		&model.UserAccessLink{},
		&model.ChatLead{},
		&model.EmailJob{},
		&model.AuditLog{},
	); err != nil {
		return err
	}

	for _, stmt := range extraIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
