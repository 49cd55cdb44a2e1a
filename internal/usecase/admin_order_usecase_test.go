package usecase

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"app/internal/config"
	"app/internal/domain/model"
)

type AdmAuditRepoMock struct{ mock.Mock }

func (m *AdmAuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

type admFixture struct {
	orders *StlOrderRepoMock
	users  *FlUserRepoMock
	audits *AdmAuditRepoMock
	mail   *MailerMock
	clock  *fixedClock
	uc     *AdminOrderUsecase
}

func newAdmFixture() *admFixture {
	f := &admFixture{
		orders: new(StlOrderRepoMock),
		users:  new(FlUserRepoMock),
		audits: new(AdmAuditRepoMock),
		mail:   new(MailerMock),
		clock:  &fixedClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
	}
	cfg := config.Config{DashboardBaseURL: "https://app.example.com"}
	f.uc = NewAdminOrderUsecase(cfg, f.orders, f.users, f.audits, f.mail, f.clock)
	return f
}

func (f *admFixture) paidOrder() model.Order {
	userID := int64(9)
	return model.Order{
		ID:            1,
		CustomerName:  "山田太郎",
		CustomerEmail: "yamada@example.com",
		Total:         3000,
		PaymentStatus: model.PaymentStatusPaid,
		Status:        model.OrderStatusCompleted,
		UserID:        &userID,
	}
}

func TestAdminResend_OrderNotPaid(t *testing.T) {
	f := newAdmFixture()

	order := f.paidOrder()
	order.PaymentStatus = model.PaymentStatusPending
	f.orders.On("FindByID", mock.Anything, int64(1)).Return(order, nil)

	_, err := f.uc.ResendConfirmation(context.Background(), 100, 1)

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Status)
	f.mail.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminResend_AlreadySent(t *testing.T) {
	f := newAdmFixture()

	order := f.paidOrder()
	sentAt := f.clock.t.Add(-time.Hour)
	order.ConfirmationEmailSentAt = &sentAt
	f.orders.On("FindByID", mock.Anything, int64(1)).Return(order, nil)

	_, err := f.uc.ResendConfirmation(context.Background(), 100, 1)

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Status)
}

func TestAdminResend_Success_FirstLoginLink(t *testing.T) {
	f := newAdmFixture()

	order := f.paidOrder()
	f.orders.On("FindByID", mock.Anything, int64(1)).Return(order, nil)

	token := "tok-live"
	expires := f.clock.t.Add(time.Hour)
	f.users.On("FindByID", mock.Anything, int64(9)).Return(&model.User{
		ID:                       9,
		PasswordSet:              false,
		FirstLoginToken:          &token,
		FirstLoginTokenExpiresAt: &expires,
		IsActive:                 true,
	}, nil)

	var sentBody string
	f.mail.On("Send", "yamada@example.com", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sentBody = args.Get(2).(string)
	}).Return(nil)
	f.orders.On("MarkConfirmationEmailSent", mock.Anything, int64(1), f.clock.t).Return(true, nil)
	f.audits.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.ActorUserID == 100 &&
			l.Action == model.AuditActionResendConfirmation &&
			l.ResourceType == model.AuditResourceOrder &&
			l.ResourceID == 1
	})).Return(nil)

	out, err := f.uc.ResendConfirmation(context.Background(), 100, 1)
	assert.NoError(t, err)
	assert.True(t, out.Sent)
	assert.True(t, strings.Contains(sentBody, "first-login?token=tok-live"))

	f.audits.AssertExpectations(t)
}

func TestAdminResend_GateLostRace(t *testing.T) {
	f := newAdmFixture()

	order := f.paidOrder()
	order.UserID = nil
	f.orders.On("FindByID", mock.Anything, int64(1)).Return(order, nil)
	f.mail.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	//別プロセスが先にゲートを閉じたケース
	f.orders.On("MarkConfirmationEmailSent", mock.Anything, int64(1), f.clock.t).Return(false, nil)

	_, err := f.uc.ResendConfirmation(context.Background(), 100, 1)

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Status)
	f.audits.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
