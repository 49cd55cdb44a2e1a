package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"app/internal/domain/model"
	"app/internal/repository"
)

type CartUsecase struct {
	txm       repository.TransactionManager
	carts     repository.CartRepository
	cartItems repository.CartItemRepository
	products  repository.ProductRepository
	idGen     IDGenerator
}

// DI
func NewCartUsecase(
	txm repository.TransactionManager,
	carts repository.CartRepository,
	cartItems repository.CartItemRepository,
	products repository.ProductRepository,
	idGen IDGenerator,
) *CartUsecase {
	return &CartUsecase{
		txm:       txm,
		carts:     carts,
		cartItems: cartItems,
		products:  products,
		idGen:     idGen,
	}
}

type CartItemResponse struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int64  `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

type CartResponse struct {
	SessionKey string             `json:"session_key"`
	Items      []CartItemResponse `json:"items"`
	Total      int64              `json:"total"`
}

// カートを取得。セッションキーが無ければ新しく発行する。
func (u *CartUsecase) GetCart(ctx context.Context, sessionKey string) (CartResponse, error) {
	sessionKey = strings.TrimSpace(sessionKey)
	if sessionKey == "" {
		sessionKey = u.idGen.NewID()
	}

	cart, err := u.carts.GetOrCreateActiveBySessionKey(ctx, sessionKey)
	if err != nil {
		return CartResponse{}, err
	}

	return u.buildCartResponse(ctx, cart)
}

// 商品をカートに追加。同一商品は数量加算になる。
func (u *CartUsecase) AddToCart(ctx context.Context, sessionKey string, productID int64, quantity int64) (CartResponse, error) {
	sessionKey = strings.TrimSpace(sessionKey)
	if sessionKey == "" {
		sessionKey = u.idGen.NewID()
	}
	if quantity <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "quantity must be positive")
	}

	product, err := u.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "product not found")
		}
		return CartResponse{}, err
	}
	if !product.IsActive {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "product not found")
	}

	cart, err := u.carts.GetOrCreateActiveBySessionKey(ctx, sessionKey)
	if err != nil {
		return CartResponse{}, err
	}

	//追加時点の価格を必ず固定する
	if err := u.cartItems.UpsertByCartAndProduct(ctx, cart.ID, product.ID, quantity, product.Price); err != nil {
		return CartResponse{}, err
	}

	return u.buildCartResponse(ctx, cart)
}

// 明細の数量を変更する。
func (u *CartUsecase) UpdateItemQuantity(ctx context.Context, sessionKey string, cartItemID int64, quantity int64) (CartResponse, error) {
	if quantity <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "quantity must be positive")
	}

	cart, err := u.mustOwnItem(ctx, sessionKey, cartItemID)
	if err != nil {
		return CartResponse{}, err
	}

	if err := u.cartItems.UpdateQuantity(ctx, cartItemID, quantity); err != nil {
		return CartResponse{}, err
	}

	return u.buildCartResponse(ctx, cart)
}

// 明細を削除する。
func (u *CartUsecase) RemoveItem(ctx context.Context, sessionKey string, cartItemID int64) (CartResponse, error) {
	cart, err := u.mustOwnItem(ctx, sessionKey, cartItemID)
	if err != nil {
		return CartResponse{}, err
	}

	if err := u.cartItems.DeleteByID(ctx, cartItemID); err != nil {
		return CartResponse{}, err
	}

	return u.buildCartResponse(ctx, cart)
}

type CheckoutInput struct {
	CustomerName     string `json:"customer_name"`
	CustomerEmail    string `json:"customer_email"`
	CustomerPhone    string `json:"customer_phone"`
	CustomerAddress  string `json:"customer_address"`
	PaymentProvider  string `json:"payment_provider"`
	SubscriptionType string `json:"subscription_type"`
}

type CheckoutOutput struct {
	OrderID       int64               `json:"order_id"`
	Total         int64               `json:"total"`
	PaymentStatus model.PaymentStatus `json:"payment_status"`
}

// カートを注文に確定する。
// 在庫の減算・注文作成・カートのORDERED化は1トランザクション。
// 注文のtotalはここで固めた明細合計。以後は再計算しない。
func (u *CartUsecase) Checkout(ctx context.Context, sessionKey string, in CheckoutInput) (CheckoutOutput, error) {
	sessionKey = strings.TrimSpace(sessionKey)
	if sessionKey == "" {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "cart is empty")
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "customer_name is required")
	}
	if !looksLikeEmail(in.CustomerEmail) {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "customer_email is invalid")
	}

	var out CheckoutOutput

	err := u.txm.WithinTx(ctx, func(r repository.TxRepos) error {
		cart, err := r.Carts().FindActiveBySessionKey(ctx, sessionKey)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return NewHTTPError(http.StatusBadRequest, "cart is empty")
			}
			return err
		}

		items, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart is empty")
		}

		var total int64
		orderItems := make([]model.OrderItem, 0, len(items))

		for _, item := range items {
			product, err := r.Products().FindByID(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return NewHTTPError(http.StatusConflict, "product no longer available")
				}
				return err
			}
			if !product.IsActive {
				return NewHTTPError(http.StatusConflict, "product no longer available")
			}

			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, product.ID, item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return NewHTTPError(http.StatusConflict, "insufficient stock: "+product.Name)
			}

			//価格はカート追加時のスナップショットを使う
			total += item.UnitPriceSnapshot * item.Quantity
			orderItems = append(orderItems, model.OrderItem{
				ProductID:           product.ID,
				ProductNameSnapshot: product.Name,
				UnitPriceSnapshot:   item.UnitPriceSnapshot,
				Quantity:            item.Quantity,
			})
		}

		order := model.Order{
			CustomerName:     strings.TrimSpace(in.CustomerName),
			CustomerEmail:    strings.ToLower(strings.TrimSpace(in.CustomerEmail)),
			CustomerPhone:    strings.TrimSpace(in.CustomerPhone),
			CustomerAddress:  strings.TrimSpace(in.CustomerAddress),
			Total:            total,
			PaymentProvider:  in.PaymentProvider,
			PaymentStatus:    model.PaymentStatusPending,
			Status:           model.OrderStatusPending,
			SubscriptionType: in.SubscriptionType,
		}

		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return err
		}

		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return err
		}

		if err := r.Carts().UpdateStatus(ctx, cart.ID, model.CartStatusOrdered); err != nil {
			return err
		}
		if err := r.Carts().Clear(ctx, cart.ID); err != nil {
			return err
		}

		out = CheckoutOutput{
			OrderID:       orderID,
			Total:         total,
			PaymentStatus: model.PaymentStatusPending,
		}
		return nil
	})
	if err != nil {
		return CheckoutOutput{}, err
	}

	return out, nil
}

// 明細がそのセッションのACTIVEカートのものか確認する。
func (u *CartUsecase) mustOwnItem(ctx context.Context, sessionKey string, cartItemID int64) (model.Cart, error) {
	sessionKey = strings.TrimSpace(sessionKey)
	if sessionKey == "" {
		return model.Cart{}, NewHTTPError(http.StatusNotFound, "cart item not found")
	}

	owned, err := u.cartItems.IsOwnedBySession(ctx, cartItemID, sessionKey)
	if err != nil {
		return model.Cart{}, err
	}
	if !owned {
		return model.Cart{}, NewHTTPError(http.StatusNotFound, "cart item not found")
	}

	cart, err := u.carts.FindActiveBySessionKey(ctx, sessionKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Cart{}, NewHTTPError(http.StatusNotFound, "cart item not found")
		}
		return model.Cart{}, err
	}
	return cart, nil
}

func (u *CartUsecase) buildCartResponse(ctx context.Context, cart model.Cart) (CartResponse, error) {
	items, err := u.cartItems.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartResponse{}, err
	}

	resp := CartResponse{
		SessionKey: cart.SessionKey,
		Items:      make([]CartItemResponse, 0, len(items)),
	}

	for _, item := range items {
		name := ""
		if product, err := u.products.FindByID(ctx, item.ProductID); err == nil {
			name = product.Name
		}

		subtotal := item.UnitPriceSnapshot * item.Quantity
		resp.Items = append(resp.Items, CartItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      name,
			UnitPrice: item.UnitPriceSnapshot,
			Quantity:  item.Quantity,
			Subtotal:  subtotal,
		})
		resp.Total += subtotal
	}

	return resp, nil
}

// 形だけの緩いチェック。厳密な検証はしない。
func looksLikeEmail(s string) bool {
	s = strings.TrimSpace(s)
	at := strings.Index(s, "@")
	return at > 0 && at < len(s)-1
}
