package model

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// 初回購入時に決済処理が自動作成する。
// password_set=false の間は first_login_token だけが入口。
type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"column:password_hash;not null"`
	Role         Role   `gorm:"type:varchar(20);not null;default:'USER'"`

	//本人がパスワードを設定済みか
	PasswordSet bool `gorm:"not null;default:false"`

	//初回ログイン用トークン（有効なものは同時に1つ）
	FirstLoginToken          *string `gorm:"type:varchar(64);index"`
	FirstLoginTokenExpiresAt *time.Time
	FirstLoginConsumedAt     *time.Time

	IsActive  bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
