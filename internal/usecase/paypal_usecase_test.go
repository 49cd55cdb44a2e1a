package usecase

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"app/internal/domain/model"
	"app/internal/infra/paypal"
	"app/internal/repository"
)

type PpGatewayMock struct{ mock.Mock }

func (m *PpGatewayMock) CreateOrder(ctx context.Context, units []paypal.PurchaseUnit) (paypal.OrderResponse, error) {
	args := m.Called(ctx, units)
	r, _ := args.Get(0).(paypal.OrderResponse)
	return r, args.Error(1)
}

func (m *PpGatewayMock) CaptureOrder(ctx context.Context, providerOrderID string) (paypal.CaptureResponse, error) {
	args := m.Called(ctx, providerOrderID)
	r, _ := args.Get(0).(paypal.CaptureResponse)
	return r, args.Error(1)
}

func (m *PpGatewayMock) GetOrder(ctx context.Context, providerOrderID string) (paypal.OrderResponse, error) {
	args := m.Called(ctx, providerOrderID)
	r, _ := args.Get(0).(paypal.OrderResponse)
	return r, args.Error(1)
}

func TestPayPal_CreateProviderOrder_Success(t *testing.T) {
	f := newStlFixture()
	gw := new(PpGatewayMock)
	uc := NewPayPalUsecase(nil, f.orders, gw, f.uc, "JPY")

	f.orders.On("FindByID", mock.Anything, int64(1)).Return(pendingOrder(), nil)

	gw.On("CreateOrder", mock.Anything, mock.MatchedBy(func(units []paypal.PurchaseUnit) bool {
		return len(units) == 1 && units[0].CustomID == "1" &&
			units[0].Amount.CurrencyCode == "JPY" && units[0].Amount.Value == "3000"
	})).Return(paypal.OrderResponse{
		ID:     "PP-1",
		Status: "CREATED",
		Links:  []paypal.Link{{Rel: "approve", Href: "https://paypal.example/approve"}},
	}, nil)

	f.orders.On("SetPaymentReference", mock.Anything, int64(1), "PP-1").Return(nil)

	out, err := uc.CreateProviderOrder(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, "PP-1", out.ProviderOrderID)
	assert.Equal(t, "https://paypal.example/approve", out.ApproveURL)
}

func TestPayPal_CreateProviderOrder_AlreadyPaid(t *testing.T) {
	f := newStlFixture()
	uc := NewPayPalUsecase(nil, f.orders, new(PpGatewayMock), f.uc, "JPY")

	order := pendingOrder()
	order.PaymentStatus = model.PaymentStatusPaid
	f.orders.On("FindByID", mock.Anything, int64(1)).Return(order, nil)

	_, err := uc.CreateProviderOrder(context.Background(), 1)

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Status)
}

func TestPayPal_Capture_OrderNotFound(t *testing.T) {
	f := newStlFixture()
	uc := NewPayPalUsecase(nil, f.orders, new(PpGatewayMock), f.uc, "JPY")

	f.orders.On("FindByPaymentReference", mock.Anything, "PP-404").Return(model.Order{}, repository.ErrNotFound)

	_, err := uc.Capture(context.Background(), "PP-404")

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Status)
}

func TestPayPal_Capture_DrivesSettlement(t *testing.T) {
	f := newStlFixture()
	gw := new(PpGatewayMock)
	uc := NewPayPalUsecase(nil, f.orders, gw, f.uc, "JPY")

	order := pendingOrder()
	order.PaymentReference = "PP-1"
	f.orders.On("FindByPaymentReference", mock.Anything, "PP-1").Return(order, nil)

	capture := paypal.CaptureResponse{
		ID:     "PP-1",
		Status: "COMPLETED",
		PurchaseUnits: []paypal.CapturePurchaseUnit{{
			Payments: paypal.CapturePayments{
				Captures: []paypal.Capture{{
					ID:     "CAP-1",
					Status: "COMPLETED",
					Amount: paypal.Amount{CurrencyCode: "JPY", Value: "3000"},
				}},
			},
		}},
	}
	gw.On("CaptureOrder", mock.Anything, "PP-1").Return(capture, nil)

	//キャプチャIDが決済イベントになる
	f.events.On("FindByEventID", mock.Anything, "CAP-1").Return(model.PaymentEvent{}, false, nil)
	f.orders.On("FindByID", mock.Anything, int64(1)).Return(order, nil)
	f.events.On("Create", mock.Anything, mock.MatchedBy(func(ev model.PaymentEvent) bool {
		return ev.Provider == "paypal" && ev.EventID == "CAP-1" && ev.OrderID == 1
	})).Return(nil)

	existing := &model.User{ID: 9, Email: order.CustomerEmail, PasswordSet: true, IsActive: true}
	f.users.On("FindByEmail", mock.Anything, order.CustomerEmail).Return(existing, nil)
	//payment_referenceはPayPal注文IDのまま
	f.orders.On("ApplySettlement", mock.Anything, int64(1), mock.MatchedBy(func(upd repository.SettlementUpdate) bool {
		return upd.PaymentReference == "PP-1" && upd.UserID == 9
	})).Return(nil)
	f.mail.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.orders.On("MarkConfirmationEmailSent", mock.Anything, int64(1), f.clock.t).Return(true, nil)

	out, err := uc.Capture(context.Background(), "PP-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.OrderID)
	assert.Equal(t, "CAP-1", out.CaptureID)
}

func TestPayPal_Capture_SecondRequestReplays(t *testing.T) {
	f := newStlFixture()
	gw := new(PpGatewayMock)
	uc := NewPayPalUsecase(nil, f.orders, gw, f.uc, "JPY")

	//1回目のキャプチャで確定済みの注文。payment_referenceはPayPal注文IDのまま
	order := pendingOrder()
	order.PaymentReference = "PP-1"
	order.PaymentStatus = model.PaymentStatusPaid
	f.orders.On("FindByPaymentReference", mock.Anything, "PP-1").Return(order, nil)

	gw.On("CaptureOrder", mock.Anything, "PP-1").Return(paypal.CaptureResponse{
		ID:     "PP-1",
		Status: "COMPLETED",
		PurchaseUnits: []paypal.CapturePurchaseUnit{{
			Payments: paypal.CapturePayments{
				Captures: []paypal.Capture{{ID: "CAP-1", Status: "COMPLETED"}},
			},
		}},
	}, nil)

	//同じcapture idなので高速パスで再配送扱いになる
	f.events.On("FindByEventID", mock.Anything, "CAP-1").Return(model.PaymentEvent{EventID: "CAP-1"}, true, nil)

	out, err := uc.Capture(context.Background(), "PP-1")
	assert.NoError(t, err)
	assert.Equal(t, "CAP-1", out.CaptureID)

	f.events.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.mail.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestPayPal_Capture_NotCompleted(t *testing.T) {
	f := newStlFixture()
	gw := new(PpGatewayMock)
	uc := NewPayPalUsecase(nil, f.orders, gw, f.uc, "JPY")

	order := pendingOrder()
	f.orders.On("FindByPaymentReference", mock.Anything, "PP-1").Return(order, nil)
	gw.On("CaptureOrder", mock.Anything, "PP-1").Return(paypal.CaptureResponse{ID: "PP-1", Status: "DECLINED"}, nil)

	_, err := uc.Capture(context.Background(), "PP-1")

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Status)
}
