package model

import "time"

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusCompleted OrderStatus = "COMPLETED"
)

// チェックアウト時にカートから作られる注文。
// PENDING/PENDINGで作成し、PAID/COMPLETEDへの遷移は決済処理だけが行う。
// totalは作成時点の明細合計。以後再計算しない。
type Order struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//購入者情報（注文時点のスナップショット）
	CustomerName    string `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerEmail   string `gorm:"type:varchar(255);not null;index" json:"customer_email"`
	CustomerPhone   string `gorm:"type:varchar(30)" json:"customer_phone"`
	CustomerAddress string `gorm:"type:varchar(500)" json:"customer_address"`

	Total            int64         `gorm:"not null" json:"total"`
	PaymentProvider  string        `gorm:"type:varchar(50)" json:"payment_provider"`
	PaymentStatus    PaymentStatus `gorm:"type:varchar(20);not null;index" json:"payment_status"`
	Status           OrderStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentReference string        `gorm:"type:varchar(255)" json:"payment_reference"`
	SubscriptionType string        `gorm:"type:varchar(50)" json:"subscription_type"`

	//決済確定時に紐付くユーザー（初回購入者は決済時に作成）
	UserID *int64 `gorm:"index" json:"user_id"`

	//確認メールの一回送信ゲート（nullなら未送信）
	ConfirmationEmailSentAt *time.Time `json:"confirmation_email_sent_at"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
