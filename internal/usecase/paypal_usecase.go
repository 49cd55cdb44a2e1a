package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"app/internal/domain/model"
	"app/internal/infra/paypal"
	"app/internal/repository"
)

// PayPal Orders v2 への依存をusecaseから切るための約束。
type PayPalGateway interface {
	CreateOrder(ctx context.Context, units []paypal.PurchaseUnit) (paypal.OrderResponse, error)
	CaptureOrder(ctx context.Context, providerOrderID string) (paypal.CaptureResponse, error)
	GetOrder(ctx context.Context, providerOrderID string) (paypal.OrderResponse, error)
}

// PayPalフロー。カートから内部注文を作り、承認→キャプチャ。
// キャプチャ成功は決済確定処理（SettlementUsecase）へ合流する。
type PayPalUsecase struct {
	cart       *CartUsecase
	orders     repository.OrderRepository
	gateway    PayPalGateway
	settlement *SettlementUsecase
	currency   string
}

// DI
func NewPayPalUsecase(
	cart *CartUsecase,
	orders repository.OrderRepository,
	gateway PayPalGateway,
	settlement *SettlementUsecase,
	currency string,
) *PayPalUsecase {
	if currency == "" {
		currency = "JPY"
	}
	return &PayPalUsecase{
		cart:       cart,
		orders:     orders,
		gateway:    gateway,
		settlement: settlement,
		currency:   currency,
	}
}

type CreatePayPalOrderOutput struct {
	OrderID         int64  `json:"order_id"`
	Total           int64  `json:"total"`
	ProviderOrderID string `json:"provider_order_id"`
	ApproveURL      string `json:"approve_url"`
}

// セッションのカートをチェックアウトして内部注文を作り、
// そのままPayPal注文につなぐ。
func (u *PayPalUsecase) CreateOrderFromCart(ctx context.Context, sessionKey string, in CheckoutInput) (CreatePayPalOrderOutput, error) {
	in.PaymentProvider = "paypal"

	co, err := u.cart.Checkout(ctx, sessionKey, in)
	if err != nil {
		return CreatePayPalOrderOutput{}, err
	}

	out, err := u.CreateProviderOrder(ctx, co.OrderID)
	if err != nil {
		return CreatePayPalOrderOutput{}, err
	}

	out.Total = co.Total
	return out, nil
}

// 内部注文からPayPal注文を作る。
// PayPal側のIDはpayment_referenceとして注文に残す。
func (u *PayPalUsecase) CreateProviderOrder(ctx context.Context, orderID int64) (CreatePayPalOrderOutput, error) {
	order, err := u.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return CreatePayPalOrderOutput{}, NewHTTPError(http.StatusNotFound, "order not found")
		}
		return CreatePayPalOrderOutput{}, err
	}
	if order.PaymentStatus == model.PaymentStatusPaid {
		return CreatePayPalOrderOutput{}, NewHTTPError(http.StatusConflict, "order already paid")
	}

	idStr := strconv.FormatInt(order.ID, 10)
	units := []paypal.PurchaseUnit{{
		ReferenceID: idStr,
		//custom_idでPayPal側イベントから内部注文を引けるようにする
		CustomID: idStr,
		Amount: paypal.Amount{
			CurrencyCode: u.currency,
			Value:        strconv.FormatInt(order.Total, 10),
		},
	}}

	resp, err := u.gateway.CreateOrder(ctx, units)
	if err != nil {
		return CreatePayPalOrderOutput{}, NewHTTPError(http.StatusBadGateway, "paypal create order failed")
	}

	if err := u.orders.SetPaymentReference(ctx, order.ID, resp.ID); err != nil {
		return CreatePayPalOrderOutput{}, err
	}

	out := CreatePayPalOrderOutput{OrderID: order.ID, ProviderOrderID: resp.ID}
	for _, link := range resp.Links {
		if link.Rel == "approve" {
			out.ApproveURL = link.Href
			break
		}
	}
	return out, nil
}

type CapturePayPalOrderOutput struct {
	OrderID       int64  `json:"order_id"`
	CaptureID     string `json:"capture_id"`
	CaptureStatus string `json:"capture_status"`
}

// 承認済みのPayPal注文をキャプチャし、決済確定処理へ流す。
// capture idをevent_idに使うので、二重キャプチャ要求でも確定は1回だけ。
func (u *PayPalUsecase) Capture(ctx context.Context, providerOrderID string) (CapturePayPalOrderOutput, error) {
	order, err := u.orders.FindByPaymentReference(ctx, providerOrderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return CapturePayPalOrderOutput{}, NewHTTPError(http.StatusNotFound, "order not found for paypal order")
		}
		return CapturePayPalOrderOutput{}, err
	}

	resp, err := u.gateway.CaptureOrder(ctx, providerOrderID)
	if err != nil {
		return CapturePayPalOrderOutput{}, NewHTTPError(http.StatusBadGateway, "paypal capture failed")
	}
	if resp.Status != "COMPLETED" {
		return CapturePayPalOrderOutput{}, NewHTTPError(http.StatusConflict, "paypal capture not completed")
	}

	captureID := ""
	var amount *int64
	for _, unit := range resp.PurchaseUnits {
		for _, cpt := range unit.Payments.Captures {
			captureID = cpt.ID
			if n, ok := asInt64(cpt.Amount.Value); ok {
				amount = &n
			}
			break
		}
		if captureID != "" {
			break
		}
	}
	if captureID == "" {
		return CapturePayPalOrderOutput{}, NewHTTPError(http.StatusBadGateway, "paypal capture id missing")
	}

	rawBytes, _ := json.Marshal(resp)

	//payment_referenceはPayPal注文IDのまま残す。
	//キャプチャIDで上書きすると、再キャプチャ要求が注文に辿り着けなくなる
	err = u.settlement.Settle(ctx, SettlementEvent{
		Provider:         "paypal",
		EventID:          captureID,
		OrderID:          order.ID,
		Status:           resp.Status,
		PaymentReference: providerOrderID,
		Amount:           amount,
		Currency:         u.currency,
		Raw:              string(rawBytes),
	})
	if err != nil {
		return CapturePayPalOrderOutput{}, err
	}

	return CapturePayPalOrderOutput{
		OrderID:       order.ID,
		CaptureID:     captureID,
		CaptureStatus: resp.Status,
	}, nil
}

type PayPalOrderStatusOutput struct {
	ProviderOrderID string `json:"provider_order_id"`
	Status          string `json:"status"`
}

// PayPal側の注文状態を見る。
func (u *PayPalUsecase) GetProviderOrder(ctx context.Context, providerOrderID string) (PayPalOrderStatusOutput, error) {
	resp, err := u.gateway.GetOrder(ctx, providerOrderID)
	if err != nil {
		return PayPalOrderStatusOutput{}, NewHTTPError(http.StatusBadGateway, "paypal get order failed")
	}
	return PayPalOrderStatusOutput{
		ProviderOrderID: resp.ID,
		Status:          resp.Status,
	}, nil
}
