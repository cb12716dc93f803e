// Package binga is a client for the Binga payment gateway HTTP API: order
// retrieval, order listing, and charge (pay/prepay) submission.
//
// A Client is safe for concurrent use: its configuration is immutable after
// construction and every call builds its own request. There are no internal
// retries; each call is a single attempt whose outcome is one of four
// inspectable error kinds (ConfigError, TransportError, DecodeError,
// GatewayError).
package binga

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/moudarir/binga/internal/checksum"
	"github.com/moudarir/binga/internal/config"
	"github.com/moudarir/binga/internal/format"
	"github.com/moudarir/binga/internal/transport"
)

// API paths, relative to the environment base URL. Pay and prepay charges
// share one endpoint; the charge type only changes the checksum tag.
const (
	pathOrder       = "/bingaApi/api/orders/%s"
	pathOrders      = "/bingaApi/api/orders"
	pathStoreOrders = "/bingaApi/api/orders/store/%s"
	pathPay         = "/bingaApi/api/orders/pay"
)

// Format selects the response format negotiated via the Accept header.
type Format = transport.Format

const (
	FormatJSON  = transport.FormatJSON
	FormatJSONP = transport.FormatJSONP
	FormatXML   = transport.FormatXML
)

// ChargeType distinguishes an immediate bill from a reservation.
type ChargeType string

const (
	ChargePay    ChargeType = "pay"
	ChargePrepay ChargeType = "prepay"
)

// Config configures a Client built with New. Credentials left empty in the
// dev environment fall back to Binga's published sandbox set; in prod every
// credential is required.
type Config struct {
	StoreID    string
	PrivateKey string
	Username   string
	Password   string

	// Environment is "dev" (default) or "prod".
	Environment string

	// BaseURL overrides the environment endpoint. Intended for tests
	// against a stub gateway.
	BaseURL string

	// HTTPClient performs the exchanges. Callers needing timeouts or TLS
	// settings configure them here. Nil gets a 30s-timeout client.
	HTTPClient *http.Client

	// Logger receives debug-level request/response lines. Nil means
	// slog.Default(). Credentials and checksum inputs are never logged.
	Logger *slog.Logger
}

// Client is the gateway facade. Construct with New or NewFromEnv.
type Client struct {
	storeID    string
	privateKey string
	transport  *transport.Client
	logger     *slog.Logger
}

// New builds a Client from explicit configuration. Missing credentials are a
// ConfigError here, never at call time.
func New(cfg Config) (*Client, error) {
	cc := &config.Config{
		StoreID:     cfg.StoreID,
		PrivateKey:  cfg.PrivateKey,
		Username:    cfg.Username,
		Password:    cfg.Password,
		Environment: cfg.Environment,
	}
	if err := cc.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = cc.Endpoint()
	}

	return &Client{
		storeID:    cc.StoreID,
		privateKey: cc.PrivateKey,
		transport: transport.NewClient(baseURL, cc.Username, cc.Password, transport.Options{
			HTTPClient: cfg.HTTPClient,
			Logger:     logger,
		}),
		logger: logger,
	}, nil
}

// NewFromEnv builds a Client from BINGA_STORE_ID, BINGA_PRIVATE_KEY,
// BINGA_USERNAME, BINGA_PASSWORD and BINGA_ENVIRONMENT (and a .env file when
// present).
func NewFromEnv() (*Client, error) {
	cc, err := config.Load()
	if err != nil {
		return nil, err
	}
	return New(Config{
		StoreID:     cc.StoreID,
		PrivateKey:  cc.PrivateKey,
		Username:    cc.Username,
		Password:    cc.Password,
		Environment: cc.Environment,
		Logger:      cc.NewLogger(),
	})
}

// RequestOption adjusts one call.
type RequestOption func(*requestOptions)

type requestOptions struct {
	format Format
}

// WithFormat negotiates the response format for one call. Default is JSON.
func WithFormat(f Format) RequestOption {
	return func(o *requestOptions) { o.format = f }
}

func buildOptions(opts []RequestOption) requestOptions {
	options := requestOptions{format: FormatJSON}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// ListOptions paginate the order listings. Zero values mean page 1, limit
// 20, offset 0.
type ListOptions struct {
	Page   int
	Limit  int
	Offset int
}

// query sends both the long and short parameter names; older gateway
// revisions read one or the other.
func (l ListOptions) query() url.Values {
	page, limit, offset := l.Page, l.Limit, l.Offset
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	q.Set("l", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	q.Set("o", strconv.Itoa(offset))
	return q
}

// ChargeRequest describes a new payable order. Amount, ExternalID and
// BuyerEmail participate in the checksum and are effectively required by the
// gateway.
type ChargeRequest struct {
	Amount     float64
	ExternalID string
	BuyerEmail string

	BuyerFirstName string
	BuyerLastName  string
	BuyerPhone     string
	BuyerAddress   string

	SuccessURL string
	FailureURL string

	// ExpireDays sets the order expiration horizon. Non-positive means the
	// gateway default of 7 days.
	ExpireDays int

	// Extra fields are merged last and win on key collision, including over
	// the injected storeId, apiVersion, expirationDate and orderCheckSum.
	Extra map[string]string
}

// Order retrieves a single order by its gateway code.
func (c *Client) Order(ctx context.Context, code string, opts ...RequestOption) (*Order, error) {
	options := buildOptions(opts)
	raw, err := c.transport.Execute(ctx, transport.RequestSpec{
		Method: http.MethodGet,
		Path:   fmt.Sprintf(pathOrder, url.PathEscape(code)),
		Accept: options.format,
	})
	if err != nil {
		return nil, err
	}
	return c.singleOrder(raw)
}

// MerchantOrders lists every order of the authenticated merchant.
func (c *Client) MerchantOrders(ctx context.Context, list ListOptions, opts ...RequestOption) ([]*Order, error) {
	return c.listOrders(ctx, pathOrders, list, opts)
}

// StoreOrders lists the orders of the configured store.
func (c *Client) StoreOrders(ctx context.Context, list ListOptions, opts ...RequestOption) ([]*Order, error) {
	path := fmt.Sprintf(pathStoreOrders, url.PathEscape(c.storeID))
	return c.listOrders(ctx, path, list, opts)
}

// Pay bills the customer immediately.
func (c *Client) Pay(ctx context.Context, req ChargeRequest, opts ...RequestOption) (*Order, error) {
	return c.Charge(ctx, req, ChargePay, opts...)
}

// Book submits a prepay order (a reservation the customer settles later,
// e.g. at a payment kiosk).
func (c *Client) Book(ctx context.Context, req ChargeRequest, opts ...RequestOption) (*Order, error) {
	return c.Charge(ctx, req, ChargePrepay, opts...)
}

// Charge submits a new order. The payload is signed: the checksum covers the
// caller's data after amount formatting but before the injected defaults are
// merged in, and the caller's fields win on collision.
func (c *Client) Charge(ctx context.Context, req ChargeRequest, typ ChargeType, opts ...RequestOption) (*Order, error) {
	options := buildOptions(opts)
	data := chargeData(req)
	c.logger.Debug("charging order", "type", typ, "externalId", data["externalId"], "amount", data["amount"])

	form := url.Values{}
	form.Set("storeId", c.storeID)
	form.Set("apiVersion", config.APIVersion)
	form.Set("expirationDate", format.ExpirationDate(req.ExpireDays, time.Time{}))
	form.Set("orderCheckSum", c.checkSum(typ, data))
	for key, value := range data {
		form.Set(key, value)
	}

	raw, err := c.transport.Execute(ctx, transport.RequestSpec{
		Method: http.MethodPost,
		Path:   pathPay,
		Accept: options.format,
		Form:   form,
	})
	if err != nil {
		return nil, err
	}
	return c.singleOrder(raw)
}

// GenerateCheckSum computes the signing digest for a charge request, exposed
// for callers that assemble payloads out of band (e.g. hosted payment
// pages). An unrecognized charge type signs with the prepay tag.
func (c *Client) GenerateCheckSum(typ ChargeType, req ChargeRequest) string {
	return c.checkSum(typ, chargeData(req))
}

func (c *Client) checkSum(typ ChargeType, data map[string]string) string {
	return checksum.Generate(string(typ), data["amount"], c.storeID, data["externalId"], data["buyerEmail"], c.privateKey)
}

// chargeData flattens a ChargeRequest into wire fields. The amount is
// normalized to the fixed 2-decimal form the checksum requires; an Extra
// "amount" entry is taken as already formatted and passed through, mirroring
// string amounts in the original API.
func chargeData(req ChargeRequest) map[string]string {
	data := map[string]string{
		"amount": format.Amount(req.Amount),
	}
	setIfPresent := func(key, value string) {
		if value != "" {
			data[key] = value
		}
	}
	setIfPresent("externalId", req.ExternalID)
	setIfPresent("buyerEmail", req.BuyerEmail)
	setIfPresent("buyerFirstName", req.BuyerFirstName)
	setIfPresent("buyerLastName", req.BuyerLastName)
	setIfPresent("buyerPhone", req.BuyerPhone)
	setIfPresent("buyerAddress", req.BuyerAddress)
	setIfPresent("successUrl", req.SuccessURL)
	setIfPresent("failureUrl", req.FailureURL)
	for key, value := range req.Extra {
		data[key] = value
	}
	return data
}

// singleOrder decodes and classifies a response expected to carry one order
// record.
func (c *Client) singleOrder(raw *transport.RawResponse) (*Order, error) {
	payload, err := transport.Decode(raw)
	if err != nil {
		return nil, err
	}
	if err := classify(payload, raw.StatusCode); err != nil {
		return nil, err
	}
	rec, ok := payload.Order()
	if !ok {
		return nil, fmt.Errorf("binga: success response carries no order record")
	}
	return orderFromRecord(rec), nil
}

func (c *Client) listOrders(ctx context.Context, path string, list ListOptions, opts []RequestOption) ([]*Order, error) {
	options := buildOptions(opts)
	raw, err := c.transport.Execute(ctx, transport.RequestSpec{
		Method: http.MethodGet,
		Path:   path,
		Accept: options.format,
		Query:  list.query(),
	})
	if err != nil {
		return nil, err
	}

	payload, err := transport.Decode(raw)
	if err != nil {
		return nil, err
	}
	if payload.NoContent() && raw.StatusCode < 400 {
		// An empty page, not a failure.
		return []*Order{}, nil
	}
	if err := classify(payload, raw.StatusCode); err != nil {
		return nil, err
	}

	records := payload.Orders()
	orders := make([]*Order, 0, len(records))
	for _, rec := range records {
		orders = append(orders, orderFromRecord(rec))
	}
	return orders, nil
}

// classify turns a decoded payload into a GatewayError when it is not a
// success. The decoded error object wins over the HTTP status; an error
// status with an empty or unhelpful body falls back to the fixed reason
// phrase table.
func classify(payload *transport.Payload, statusCode int) error {
	if payload.NoContent() {
		if statusCode >= 400 {
			return &GatewayError{Code: statusCode, Message: transport.ReasonPhrase(statusCode)}
		}
		return ErrNoContent
	}
	if payload.Result() == "success" {
		return nil
	}
	if code, message, ok := payload.Failure(); ok {
		return &GatewayError{Code: code, Message: message}
	}
	if statusCode >= 400 {
		return &GatewayError{Code: statusCode, Message: transport.ReasonPhrase(statusCode)}
	}
	return &GatewayError{Code: statusCode, Message: "unexpected gateway response"}
}

// LastTransferTime reports the duration of the most recent exchange, for
// observability.
func (c *Client) LastTransferTime() time.Duration {
	return c.transport.LastTransferTime()
}

// LastEffectiveURL reports the final URL (after redirects) of the most
// recent exchange.
func (c *Client) LastEffectiveURL() string {
	return c.transport.LastEffectiveURL()
}
