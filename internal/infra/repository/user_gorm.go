package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"

	"gorm.io/gorm"
)

type userGormRepository struct {
	db *gorm.DB
}

// DI
// main.goでこれをnewしてusecaseに注入します。
func NewUserGormRepository(db *gorm.DB) *userGormRepository {
	return &userGormRepository{db: db}
}

// Create はユーザーを新規作成。
// SAVEPOINTで包み、emailのunique違反が外側のトランザクションを
// abortさせないようにする（呼び出し側は失敗時に再検索する）。
func (r *userGormRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(user).Error
	})
}

// emailでユーザーを1件取得（見つからなければ nil, nil）
func (r *userGormRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User

	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&u).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &u, nil
}

// IDでユーザーを1件取得
func (r *userGormRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&u).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &u, nil
}

// 初回ログイントークンでユーザーを取得
func (r *userGormRepository) FindByFirstLoginToken(ctx context.Context, token string) (*model.User, error) {
	var u model.User

	err := r.db.WithContext(ctx).
		Where("first_login_token = ?", token).
		First(&u).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &u, nil
}

// ユーザーを更新。
// Saveはゼロ値を書かないので、トークンのクリアはSelectで明示する。
func (r *userGormRepository) Update(ctx context.Context, user *model.User) error {
	err := r.db.WithContext(ctx).
		Model(user).
		Select("password_hash", "password_set",
			"first_login_token", "first_login_token_expires_at", "first_login_consumed_at",
			"is_active", "updated_at").
		Updates(user).Error
	if err != nil {
		return err
	}
	return nil
}
