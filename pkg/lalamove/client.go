// Package lalamove is a thin signed HTTP client for the Lalamove v3 API.
// Lalamove ships no Go SDK, so requests are built and HMAC-signed here.
package lalamove

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tahanancrafts/marketplace-backend/pkg/config"
	pkgerrors "github.com/tahanancrafts/marketplace-backend/pkg/errors"
	"github.com/tahanancrafts/marketplace-backend/pkg/logger"
)

const (
	quotationsPath = "/v3/quotations"
	ordersPath     = "/v3/orders"

	DefaultServiceType = "MOTORCYCLE"
	DefaultLanguage    = "en_PH"
)

var (
	errAPIKeyRequired = errors.New("lalamove api key is required")
	errSecretRequired = errors.New("lalamove secret is required")
	errLoggerRequired = errors.New("lalamove logger is required")
)

// Client signs and sends Lalamove requests with centralized logging and
// error mapping.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	secret     string
	market     string
	logger     *logger.Logger
	now        func() time.Time
}

// New initializes the Lalamove wrapper and validates the credentials.
func New(ctx context.Context, cfg config.LalamoveConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errSecretRequired
	}

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     apiKey,
		secret:     secret,
		market:     cfg.Market,
		logger:     logg,
		now:        time.Now,
	}

	logg.Info(ctx, "lalamove client initialized")
	return c, nil
}

// GetQuotation prices a route. The returned quotation expires server-side,
// so callers should book promptly or re-quote.
func (c *Client) GetQuotation(ctx context.Context, params QuotationParams) (*Quotation, error) {
	serviceType := params.ServiceType
	if serviceType == "" {
		serviceType = DefaultServiceType
	}
	language := params.Language
	if language == "" {
		language = DefaultLanguage
	}
	req := struct {
		Data quotationRequest `json:"data"`
	}{Data: quotationRequest{
		ServiceType: serviceType,
		Language:    language,
		Stops:       params.Stops,
	}}

	c.log(ctx, "request", "get_quotation", map[string]any{"stops": len(params.Stops)})

	var resp envelope[Quotation]
	if err := c.do(ctx, http.MethodPost, quotationsPath, req, &resp); err != nil {
		c.log(ctx, "error", "get_quotation", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "get_quotation", map[string]any{
		"quotation_id": resp.Data.QuotationID,
		"total":        resp.Data.PriceBreakdown.Total,
	})
	return &resp.Data, nil
}

// PlaceOrder books a driver against a live quotation.
func (c *Client) PlaceOrder(ctx context.Context, params OrderParams) (*Order, error) {
	req := struct {
		Data orderRequest `json:"data"`
	}{Data: orderRequest{
		QuotationID: params.QuotationID,
		Sender:      params.Sender,
		Recipients:  params.Recipients,
	}}
	if params.Remarks != "" {
		req.Data.Metadata = &orderMetadata{Remarks: params.Remarks}
	}

	c.log(ctx, "request", "place_order", map[string]any{"quotation_id": params.QuotationID})

	var resp envelope[Order]
	if err := c.do(ctx, http.MethodPost, ordersPath, req, &resp); err != nil {
		c.log(ctx, "error", "place_order", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "place_order", map[string]any{
		"order_id": resp.Data.OrderID,
		"status":   resp.Data.Status,
	})
	return &resp.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding lalamove request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building lalamove request")
	}

	timestamp := strconv.FormatInt(c.now().UnixMilli(), 10)
	httpReq.Header.Set("Authorization", "hmac "+c.apiKey+":"+timestamp+":"+c.sign(timestamp, method, path, payload))
	httpReq.Header.Set("Market", c.market)
	httpReq.Header.Set("Request-ID", uuid.NewString())
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "calling lalamove")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading lalamove response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.mapStatusError(resp.StatusCode, raw)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding lalamove response")
	}
	return nil
}

// sign produces the v3 request signature. The signed string is the
// millisecond timestamp, method, path, a blank line, then the raw body,
// joined by CRLF, HMAC-SHA256 hex over the secret.
func (c *Client) sign(timestamp, method, path string, body []byte) string {
	raw := timestamp + "\r\n" + method + "\r\n" + path + "\r\n\r\n" + string(body)
	mac := hmac.New(sha256.New, []byte(c.secret))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *Client) mapStatusError(status int, raw []byte) error {
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		msg = http.StatusText(status)
	}
	err := fmt.Errorf("lalamove responded %d: %s", status, msg)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lalamove rejected credentials")
	case status == http.StatusUnprocessableEntity || status == http.StatusBadRequest:
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "lalamove rejected request")
	case status == http.StatusNotFound:
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "lalamove resource not found")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lalamove request failed")
	}
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = v
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("lalamove %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("lalamove %s", phase))
	}
}
