package usecase

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/mailer"
	"app/internal/repository"
)

const (
	//初回ログインリンクの寿命
	firstLoginTokenTTL   = 48 * time.Hour
	firstLoginTokenBytes = 32
)

// 決済確定処理。
// webhookとPayPalキャプチャの両方がここに合流する。
type SettlementUsecase struct {
	cfg    config.Config
	txm    repository.TransactionManager
	orders repository.OrderRepository
	mail   mailer.Mailer
	hasher PasswordHasher
	clock  Clock
}

// DI
func NewSettlementUsecase(
	cfg config.Config,
	txm repository.TransactionManager,
	orders repository.OrderRepository,
	mail mailer.Mailer,
	hasher PasswordHasher,
	clock Clock,
) *SettlementUsecase {
	return &SettlementUsecase{
		cfg:    cfg,
		txm:    txm,
		orders: orders,
		mail:   mail,
		hasher: hasher,
		clock:  clock,
	}
}

// webhook入口。共有シークレットを照合してから確定処理へ。
func (u *SettlementUsecase) ProcessWebhook(ctx context.Context, secret string, raw []byte) error {
	if u.cfg.WebhookSecret != "" && secret != u.cfg.WebhookSecret {
		return NewHTTPError(http.StatusUnauthorized, "invalid webhook secret")
	}

	ev, err := NormalizeSettlementPayload(raw)
	if err != nil {
		return NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return u.Settle(ctx, ev)
}

// 決済イベントを注文に適用する。
// 同一event_idの再配送は成功扱いで何もしない（payment_eventsのunique制約が本体）。
// 確定が成功したときだけ、コミット後に確認メールを1回送る。
func (u *SettlementUsecase) Settle(ctx context.Context, ev SettlementEvent) error {
	var (
		replayed   bool
		orderID    int64
		emailToken string
	)

	err := u.txm.WithinTx(ctx, func(r repository.TxRepos) error {
		//高速パス。既知のイベントならここで帰る
		if _, found, err := r.PaymentEvents().FindByEventID(ctx, ev.EventID); err != nil {
			return err
		} else if found {
			replayed = true
			return nil
		}

		order, err := r.Orders().FindByID(ctx, ev.OrderID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "order not found")
			}
			return err
		}

		err = r.PaymentEvents().Create(ctx, model.PaymentEvent{
			Provider:   ev.Provider,
			EventID:    ev.EventID,
			OrderID:    order.ID,
			Status:     ev.Status,
			RawPayload: ev.Raw,
		})
		if err != nil {
			//高速パスをすり抜けた同時配送。unique制約が弾いた
			if errors.Is(err, repository.ErrDuplicateEvent) {
				replayed = true
				return nil
			}
			return err
		}

		//金額の食い違いは記録だけして処理は続ける
		if ev.Amount != nil && *ev.Amount != order.Total {
			log.Printf("settlement amount mismatch: order=%d expected=%d got=%d event=%s",
				order.ID, order.Total, *ev.Amount, ev.EventID)
		}

		user, err := u.resolveUser(ctx, r, order)
		if err != nil {
			return err
		}

		now := u.clock.Now()
		token := ""
		if !user.PasswordSet {
			//生きているトークンは使い回す。期限は購入のたびに延長する
			if user.FirstLoginToken != nil && user.FirstLoginTokenExpiresAt != nil &&
				user.FirstLoginTokenExpiresAt.After(now) && user.FirstLoginConsumedAt == nil {
				token = *user.FirstLoginToken
			} else {
				token, err = generateSecureToken(firstLoginTokenBytes)
				if err != nil {
					return err
				}
			}

			expiresAt := now.Add(firstLoginTokenTTL)
			user.FirstLoginToken = &token
			user.FirstLoginTokenExpiresAt = &expiresAt
			user.FirstLoginConsumedAt = nil

			if err := r.Users().Update(ctx, user); err != nil {
				return err
			}
		}

		upd := repository.SettlementUpdate{
			PaymentReference: ev.PaymentReference,
			SubscriptionType: ev.SubscriptionType,
			UserID:           user.ID,
		}
		if upd.PaymentReference == "" {
			upd.PaymentReference = order.PaymentReference
		}
		if upd.SubscriptionType == "" {
			upd.SubscriptionType = order.SubscriptionType
		}
		if err := r.Orders().ApplySettlement(ctx, order.ID, upd); err != nil {
			return err
		}

		if token != "" {
			//既存リンクなら期限延長＋used_atクリア。order_idは最初の注文のまま
			err := r.AccessLinks().UpsertByToken(ctx, model.UserAccessLink{
				UserID:    user.ID,
				OrderID:   order.ID,
				Token:     token,
				ExpiresAt: now.Add(firstLoginTokenTTL),
			})
			if err != nil {
				return err
			}
		}

		orderID = order.ID
		emailToken = token
		return nil
	})
	if err != nil {
		return err
	}
	if replayed {
		return nil
	}

	u.sendConfirmationEmail(ctx, orderID, emailToken)
	return nil
}

// 注文をユーザーに解決する。居なければ初回購入として作成。
func (u *SettlementUsecase) resolveUser(ctx context.Context, r repository.TxRepos, order model.Order) (*model.User, error) {
	if order.UserID != nil {
		user, err := r.Users().FindByID(ctx, *order.UserID)
		if err != nil {
			return nil, err
		}
		if user != nil {
			return user, nil
		}
	}

	user, err := r.Users().FindByEmail(ctx, order.CustomerEmail)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	//初回購入。パスワードはランダムで埋めておき、入口は初回ログインリンクだけにする
	randomPass, err := generateSecureToken(24)
	if err != nil {
		return nil, err
	}
	hash, err := u.hasher.Hash(randomPass)
	if err != nil {
		return nil, err
	}

	user = &model.User{
		Email:        order.CustomerEmail,
		PasswordHash: hash,
		Role:         model.RoleUser,
		PasswordSet:  false,
		IsActive:     true,
	}
	if err := r.Users().Create(ctx, user); err != nil {
		//同じメールの同時決済でemailのuniqueに当たることがある。作った側を拾い直す
		existing, findErr := r.Users().FindByEmail(ctx, order.CustomerEmail)
		if findErr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}
	return user, nil
}

// コミット後の確認メール。
// confirmation_email_sent_at IS NULL の条件付きUPDATEが一回送信ゲート。
// 送信失敗は確定を巻き戻さない（ゲートが開いたままなので再送できる）。
func (u *SettlementUsecase) sendConfirmationEmail(ctx context.Context, orderID int64, token string) {
	order, err := u.orders.FindByID(ctx, orderID)
	if err != nil {
		log.Printf("confirmation email: reload order failed: order=%d err=%v", orderID, err)
		return
	}
	if order.ConfirmationEmailSentAt != nil {
		return
	}

	link := u.cfg.DashboardBaseURL + "/dashboard"
	if token != "" {
		link = u.cfg.DashboardBaseURL + "/first-login?token=" + url.QueryEscape(token)
	}

	subject, body := mailer.BuildOrderConfirmation(order.CustomerName, order.ID, order.Total, link)
	if err := u.mail.Send(order.CustomerEmail, subject, body); err != nil {
		log.Printf("confirmation email: send failed: order=%d err=%v", order.ID, err)
		return
	}

	ok, err := u.orders.MarkConfirmationEmailSent(ctx, order.ID, u.clock.Now())
	if err != nil {
		log.Printf("confirmation email: mark sent failed: order=%d err=%v", order.ID, err)
		return
	}
	if !ok {
		//別の処理が先にゲートを閉じていた
		log.Printf("confirmation email: already sent by another worker: order=%d", order.ID)
	}
}
