package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/mailer"
	"app/internal/repository"
)

// 管理者の手動リカバリ（確認メール再送）。
// 自動処理が途中で落ちたとき用。操作は監査ログに残す。
type AdminOrderUsecase struct {
	cfg    config.Config
	orders repository.OrderRepository
	users  repository.UserRepository
	audits repository.AuditLogRepository
	mail   mailer.Mailer
	clock  Clock
}

// DI
func NewAdminOrderUsecase(
	cfg config.Config,
	orders repository.OrderRepository,
	users repository.UserRepository,
	audits repository.AuditLogRepository,
	mail mailer.Mailer,
	clock Clock,
) *AdminOrderUsecase {
	return &AdminOrderUsecase{
		cfg:    cfg,
		orders: orders,
		users:  users,
		audits: audits,
		mail:   mail,
		clock:  clock,
	}
}

type ResendConfirmationOutput struct {
	OrderID int64 `json:"order_id"`
	Sent    bool  `json:"sent"`
}

// 未送信のままの確認メールを送り直す。
// 一回送信ゲート（条件付きUPDATE）は自動送信と共有する。
func (u *AdminOrderUsecase) ResendConfirmation(ctx context.Context, actorUserID int64, orderID int64) (ResendConfirmationOutput, error) {
	order, err := u.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ResendConfirmationOutput{}, NewHTTPError(http.StatusNotFound, "order not found")
		}
		return ResendConfirmationOutput{}, err
	}

	if order.PaymentStatus != model.PaymentStatusPaid {
		return ResendConfirmationOutput{}, NewHTTPError(http.StatusConflict, "order is not paid")
	}
	if order.ConfirmationEmailSentAt != nil {
		return ResendConfirmationOutput{}, NewHTTPError(http.StatusConflict, "confirmation email already sent")
	}

	link := u.cfg.DashboardBaseURL + "/dashboard"
	if order.UserID != nil {
		user, err := u.users.FindByID(ctx, *order.UserID)
		if err != nil {
			return ResendConfirmationOutput{}, err
		}
		if user != nil && !user.PasswordSet &&
			user.FirstLoginToken != nil && user.FirstLoginTokenExpiresAt != nil &&
			user.FirstLoginTokenExpiresAt.After(u.clock.Now()) {
			link = u.cfg.DashboardBaseURL + "/first-login?token=" + url.QueryEscape(*user.FirstLoginToken)
		}
	}

	subject, body := mailer.BuildOrderConfirmation(order.CustomerName, order.ID, order.Total, link)
	if err := u.mail.Send(order.CustomerEmail, subject, body); err != nil {
		return ResendConfirmationOutput{}, NewHTTPError(http.StatusBadGateway, "failed to send email")
	}

	ok, err := u.orders.MarkConfirmationEmailSent(ctx, order.ID, u.clock.Now())
	if err != nil {
		return ResendConfirmationOutput{}, err
	}
	if !ok {
		return ResendConfirmationOutput{}, NewHTTPError(http.StatusConflict, "confirmation email already sent")
	}

	detail, _ := json.Marshal(map[string]interface{}{
		"recipient": order.CustomerEmail,
	})
	err = u.audits.Create(ctx, model.AuditLog{
		ActorUserID:  actorUserID,
		Action:       model.AuditActionResendConfirmation,
		ResourceType: model.AuditResourceOrder,
		ResourceID:   order.ID,
		DetailJSON:   string(detail),
		CreatedAt:    u.clock.Now(),
	})
	if err != nil {
		//送信は済んでいるので失敗にはしない
		log.Printf("audit log write failed: action=%s order=%d err=%v",
			model.AuditActionResendConfirmation, order.ID, err)
	}

	return ResendConfirmationOutput{OrderID: order.ID, Sent: true}, nil
}
