package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// PayPal Orders v2 の薄いクライアント。
// access tokenはclient_credentialsで取得し、期限までキャッシュする。
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// DI
func NewClient(baseURL string, clientID string, clientSecret string) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
	}
}

type PurchaseUnit struct {
	ReferenceID string `json:"reference_id,omitempty"`
	CustomID    string `json:"custom_id,omitempty"`
	Amount      Amount `json:"amount"`
}

type Amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type OrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []Link `json:"links"`
}

type Link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

type CaptureResponse struct {
	ID            string                `json:"id"`
	Status        string                `json:"status"`
	PurchaseUnits []CapturePurchaseUnit `json:"purchase_units"`
}

type CapturePurchaseUnit struct {
	ReferenceID string          `json:"reference_id"`
	Payments    CapturePayments `json:"payments"`
}

type CapturePayments struct {
	Captures []Capture `json:"captures"`
}

type Capture struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Amount Amount `json:"amount"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// /v1/oauth2/token
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	//期限前なら使い回す
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("paypal token failed: status=%d body=%s", resp.StatusCode, string(data))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", err
	}

	c.accessToken = tr.AccessToken
	//少し手前で失効扱いにする
	c.tokenExpiry = time.Now().Add(time.Duration(tr.ExpiresIn-60) * time.Second)

	return c.accessToken, nil
}

// POST /v2/checkout/orders
func (c *Client) CreateOrder(ctx context.Context, units []PurchaseUnit) (OrderResponse, error) {
	body := map[string]interface{}{
		"intent":         "CAPTURE",
		"purchase_units": units,
	}

	var out OrderResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v2/checkout/orders", body, &out); err != nil {
		return OrderResponse{}, err
	}
	return out, nil
}

// POST /v2/checkout/orders/{id}/capture
func (c *Client) CaptureOrder(ctx context.Context, providerOrderID string) (CaptureResponse, error) {
	var out CaptureResponse
	path := fmt.Sprintf("/v2/checkout/orders/%s/capture", url.PathEscape(providerOrderID))
	if err := c.doJSON(ctx, http.MethodPost, path, map[string]interface{}{}, &out); err != nil {
		return CaptureResponse{}, err
	}
	return out, nil
}

// GET /v2/checkout/orders/{id}
func (c *Client) GetOrder(ctx context.Context, providerOrderID string) (OrderResponse, error) {
	var out OrderResponse
	path := fmt.Sprintf("/v2/checkout/orders/%s", url.PathEscape(providerOrderID))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return OrderResponse{}, err
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, method string, path string, body interface{}, out interface{}) error {
	tok, err := c.token(ctx)
	if err != nil {
		return err
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("paypal %s %s failed: status=%d body=%s", method, path, resp.StatusCode, string(data))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
