package usecase

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// プロバイダから受けた決済イベントの正規化結果。
type SettlementEvent struct {
	Provider         string
	EventID          string
	OrderID          int64
	Status           string
	PaymentReference string
	SubscriptionType string
	//nilなら金額照合はスキップ
	Amount   *int64
	Currency string
	//台帳に残す生ペイロード
	Raw string
}

// 生のwebhookペイロードをSettlementEventへ正規化する。
// フラットなキー、Stripe風（data.object.*）、PayPal風（resource.*）の
// どれで来ても同じ形に落とす。
func NormalizeSettlementPayload(raw []byte) (SettlementEvent, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return SettlementEvent{}, fmt.Errorf("payload is not valid JSON: %w", err)
	}

	ev := SettlementEvent{Raw: string(raw)}

	ev.EventID = firstString(doc,
		path("event_id"),
		path("eventId"),
		path("id"),
	)
	if ev.EventID == "" {
		return SettlementEvent{}, fmt.Errorf("event id not found in payload")
	}

	orderID, ok := firstInt64(doc,
		path("order_id"),
		path("orderId"),
		path("metadata", "order_id"),
		path("data", "object", "metadata", "order_id"),
		path("resource", "custom_id"),
		path("resource", "invoice_id"),
	)
	if !ok {
		return SettlementEvent{}, fmt.Errorf("order reference not found in payload")
	}
	ev.OrderID = orderID

	ev.Status = firstString(doc,
		path("status"),
		path("data", "object", "status"),
		path("resource", "status"),
	)

	ev.PaymentReference = firstString(doc,
		path("payment_reference"),
		path("paymentReference"),
		path("data", "object", "payment_intent"),
		path("resource", "id"),
	)

	ev.SubscriptionType = firstString(doc,
		path("subscription_type"),
		path("subscriptionType"),
		path("metadata", "subscription_type"),
		path("data", "object", "metadata", "subscription_type"),
	)

	if amount, ok := firstInt64(doc,
		path("amount"),
		path("data", "object", "amount_total"),
		path("resource", "amount", "value"),
	); ok {
		ev.Amount = &amount
	}

	ev.Currency = firstString(doc,
		path("currency"),
		path("data", "object", "currency"),
		path("resource", "amount", "currency_code"),
	)

	ev.Provider = firstString(doc, path("provider"))
	if ev.Provider == "" {
		//形からの推測
		switch {
		case hasKey(doc, "resource"):
			ev.Provider = "paypal"
		case hasKey(doc, "data"):
			ev.Provider = "stripe"
		default:
			ev.Provider = "generic"
		}
	}

	return ev, nil
}

func path(keys ...string) []string { return keys }

func hasKey(doc map[string]interface{}, key string) bool {
	_, ok := doc[key]
	return ok
}

// パスを辿って値を取る。途中がオブジェクトでなければ失敗。
func lookup(doc map[string]interface{}, keys []string) (interface{}, bool) {
	var cur interface{} = doc
	for _, key := range keys {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func firstString(doc map[string]interface{}, paths ...[]string) string {
	for _, p := range paths {
		v, ok := lookup(doc, p)
		if !ok {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func firstInt64(doc map[string]interface{}, paths ...[]string) (int64, bool) {
	for _, p := range paths {
		v, ok := lookup(doc, p)
		if !ok {
			continue
		}
		if n, ok := asInt64(v); ok {
			return n, true
		}
	}
	return 0, false
}

// JSON数値・数値文字列・"25.00"のような小数文字列を受ける。
func asInt64(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case float64:
		return int64(math.Round(x)), true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(math.Round(f)), true
		}
		return 0, false
	default:
		return 0, false
	}
}
