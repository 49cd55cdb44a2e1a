package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"app/internal/domain/model"
	"app/internal/repository"
)

// 初回ログイン後に発行するJWTの寿命
const accessTokenTTL = 24 * time.Hour

// 初回ログイン（パスワード設定）の処理。
// トークンは一回きり。使用済み・期限切れ・設定済みは410で返す。
type FirstLoginUsecase struct {
	users     repository.UserRepository
	links     repository.AccessLinkRepository
	hasher    PasswordHasher
	clock     Clock
	jwtSecret string
}

// DI
func NewFirstLoginUsecase(
	users repository.UserRepository,
	links repository.AccessLinkRepository,
	hasher PasswordHasher,
	clock Clock,
	jwtSecret string,
) *FirstLoginUsecase {
	return &FirstLoginUsecase{
		users:     users,
		links:     links,
		hasher:    hasher,
		clock:     clock,
		jwtSecret: jwtSecret,
	}
}

type FirstLoginValidation struct {
	MaskedEmail string `json:"masked_email"`
}

// トークンの生存確認。フロントがパスワード設定画面を出す前に呼ぶ。
func (u *FirstLoginUsecase) Validate(ctx context.Context, token string) (FirstLoginValidation, error) {
	user, err := u.lookupLiveToken(ctx, token)
	if err != nil {
		return FirstLoginValidation{}, err
	}

	return FirstLoginValidation{MaskedEmail: maskEmail(user.Email)}, nil
}

type FirstLoginResult struct {
	Token  string `json:"token"`
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// パスワードを設定してトークンを消費し、JWTを発行する。
func (u *FirstLoginUsecase) Complete(ctx context.Context, token string, password string) (FirstLoginResult, error) {
	if len(password) < 8 {
		return FirstLoginResult{}, NewHTTPError(http.StatusBadRequest, "password must be at least 8 characters")
	}

	user, err := u.lookupLiveToken(ctx, token)
	if err != nil {
		return FirstLoginResult{}, err
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		return FirstLoginResult{}, err
	}

	now := u.clock.Now()
	user.PasswordHash = hash
	user.PasswordSet = true
	user.FirstLoginConsumedAt = &now
	user.FirstLoginToken = nil
	user.FirstLoginTokenExpiresAt = nil

	if err := u.users.Update(ctx, user); err != nil {
		return FirstLoginResult{}, err
	}

	//リンク台帳側も使用済みにしておく
	if link, err := u.links.FindByToken(ctx, token); err == nil {
		_ = u.links.MarkUsed(ctx, link.ID, now)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return FirstLoginResult{}, err
	}

	signed, err := u.issueAccessToken(user, now)
	if err != nil {
		return FirstLoginResult{}, err
	}

	return FirstLoginResult{
		Token:  signed,
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	}, nil
}

type MeOutput struct {
	UserID      int64  `json:"user_id"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	PasswordSet bool   `json:"password_set"`
}

// JWTの本人情報を返す。
func (u *FirstLoginUsecase) Me(ctx context.Context, userID int64) (MeOutput, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return MeOutput{}, err
	}
	if user == nil || !user.IsActive {
		return MeOutput{}, NewHTTPError(http.StatusNotFound, "user not found")
	}

	return MeOutput{
		UserID:      user.ID,
		Email:       user.Email,
		Role:        string(user.Role),
		PasswordSet: user.PasswordSet,
	}, nil
}

// 生きているトークンだけ通す。
// 未知は404、使用済み・期限切れ・設定済みは410。
func (u *FirstLoginUsecase) lookupLiveToken(ctx context.Context, token string) (*model.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "token is required")
	}

	user, err := u.users.FindByFirstLoginToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, NewHTTPError(http.StatusNotFound, "token not found")
	}

	if user.PasswordSet {
		return nil, NewHTTPError(http.StatusGone, "password already set")
	}
	if user.FirstLoginConsumedAt != nil {
		return nil, NewHTTPError(http.StatusGone, "link already used")
	}
	if user.FirstLoginTokenExpiresAt == nil || !user.FirstLoginTokenExpiresAt.After(u.clock.Now()) {
		return nil, NewHTTPError(http.StatusGone, "link expired")
	}

	return user, nil
}

// HS256のJWTを発行する。
func (u *FirstLoginUsecase) issueAccessToken(user *model.User, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(accessTokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(u.jwtSecret))
}

// 先頭1文字だけ残してローカル部を伏せる。
func maskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		return "***"
	}
	local, domain := email[:at], email[at+1:]
	if len(local) <= 1 {
		return "*@" + domain
	}
	return local[:1] + "***@" + domain
}
