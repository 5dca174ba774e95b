package dhan

import (
	"context"
	"sort"
	"strconv"
	"time"

	"main/internal/broker"
	"main/internal/model"
	"main/internal/model/enum"

	"github.com/go-resty/resty/v2"
	"github.com/yanun0323/decimal"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

const defaultBaseURL = "https://api.dhan.co/v2"

// Config holds the brokerage credentials and endpoint.
type Config struct {
	BaseURL     string
	ClientID    string
	AccessToken string
	Timeout     time.Duration
}

// Client talks to the Dhan HTTP API. It implements broker.MarketData and
// broker.Dispatcher for live mode.
type Client struct {
	http     *resty.Client
	clientID string
}

// New creates a client. Credentials may be empty; Configured reports it.
func New(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	http := resty.New().
		SetBaseURL(base).
		SetTimeout(timeout).
		SetHeader("access-token", cfg.AccessToken).
		SetHeader("client-id", cfg.ClientID)

	return &Client{http: http, clientID: cfg.ClientID}
}

// Configured reports whether credentials are present.
func (c *Client) Configured() bool {
	return c.clientID != "" && c.http.Header.Get("access-token") != ""
}

// intradayResponse is the column-oriented candle payload. Numeric columns
// decode through decimal to survive both quoted and raw number encodings.
type intradayResponse struct {
	Open      []decimal.Decimal `json:"open"`
	High      []decimal.Decimal `json:"high"`
	Low       []decimal.Decimal `json:"low"`
	Close     []decimal.Decimal `json:"close"`
	Volume    []decimal.Decimal `json:"volume"`
	Timestamp []int64           `json:"timestamp"`
}

type intradayRequest struct {
	SecurityID      string `json:"securityId"`
	ExchangeSegment string `json:"exchangeSegment"`
	Instrument      string `json:"instrument"`
	Interval        string `json:"interval"`
}

// IntradayCandles fetches today's minute candles. Failures never propagate;
// they are logged and the instrument is skipped for this cycle.
func (c *Client) IntradayCandles(ctx context.Context, securityID, exchange string) []model.Bar {
	if !c.Configured() {
		logs.Warnf("dhan credentials not configured, skipping %s", securityID)
		return nil
	}

	var payload intradayResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(intradayRequest{
			SecurityID:      securityID,
			ExchangeSegment: exchangeSegment(exchange),
			Instrument:      "EQUITY",
			Interval:        "1",
		}).
		SetResult(&payload).
		Post("/charts/intraday")
	if err != nil {
		logs.Errorf("fetch intraday candles for %s, err: %+v", securityID, err)
		return nil
	}
	if resp.IsError() {
		logs.Errorf("fetch intraday candles for %s: status %d: %s", securityID, resp.StatusCode(), resp.String())
		return nil
	}

	return normalizeBars(payload)
}

// normalizeBars converts the column payload into an oldest-to-newest bar
// history with duplicate timestamps dropped.
func normalizeBars(payload intradayResponse) []model.Bar {
	n := len(payload.Close)
	if n == 0 || len(payload.Open) != n || len(payload.High) != n || len(payload.Low) != n {
		return nil
	}

	bars := make([]model.Bar, 0, n)
	for i := 0; i < n; i++ {
		bar := model.Bar{
			Open:  toFloat(payload.Open[i]),
			High:  toFloat(payload.High[i]),
			Low:   toFloat(payload.Low[i]),
			Close: toFloat(payload.Close[i]),
		}
		if i < len(payload.Volume) {
			bar.Volume = toFloat(payload.Volume[i])
		}
		if i < len(payload.Timestamp) {
			bar.Ts = time.Unix(payload.Timestamp[i], 0).UTC()
		}
		bars = append(bars, bar)
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Ts.Before(bars[j].Ts) })

	deduped := bars[:0]
	var last time.Time
	for i, bar := range bars {
		if i > 0 && bar.Ts.Equal(last) {
			continue
		}
		deduped = append(deduped, bar)
		last = bar.Ts
	}
	return deduped
}

type orderRequest struct {
	DhanClientID    string  `json:"dhanClientId"`
	TransactionType string  `json:"transactionType"`
	ExchangeSegment string  `json:"exchangeSegment"`
	ProductType     string  `json:"productType"`
	OrderType       string  `json:"orderType"`
	SecurityID      string  `json:"securityId"`
	Quantity        int     `json:"quantity"`
	Price           float64 `json:"price"`
}

type orderResponse struct {
	OrderID     string `json:"orderId"`
	OrderStatus string `json:"orderStatus"`
	ErrorMsg    string `json:"errorMessage"`
}

// Submit places a live order. Broker rejections come back as OK=false with
// the message in Err; only the result encodes failure.
func (c *Client) Submit(ctx context.Context, req broker.OrderRequest) broker.Result {
	if !c.Configured() {
		return broker.Result{Err: "dhan credentials not configured"}
	}

	price := 0.0
	if req.OrderType == enum.OrderTypeLimit {
		price = req.Price
	}

	var payload orderResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(orderRequest{
			DhanClientID:    c.clientID,
			TransactionType: string(req.Side),
			ExchangeSegment: exchangeSegment(req.Exchange),
			ProductType:     string(req.Product),
			OrderType:       string(req.OrderType),
			SecurityID:      req.SecurityID,
			Quantity:        req.Qty,
			Price:           price,
		}).
		SetResult(&payload).
		SetError(&payload).
		Post("/orders")
	if err != nil {
		logs.Errorf("place order %s %d %s, err: %+v", req.Side, req.Qty, req.Symbol, err)
		return broker.Result{Err: err.Error()}
	}
	if resp.IsError() {
		msg := payload.ErrorMsg
		if msg == "" {
			msg = resp.String()
		}
		return broker.Result{Err: msg}
	}

	logs.Infof("[LIVE] order placed: %s %d %s id=%s status=%s", req.Side, req.Qty, req.Symbol, payload.OrderID, payload.OrderStatus)
	return broker.Result{OK: true, OrderID: payload.OrderID}
}

// TestConnection verifies credentials with a fund-limits call. This is an
// operator action, so errors surface to the caller.
func (c *Client) TestConnection(ctx context.Context) error {
	if !c.Configured() {
		return errors.New("dhan credentials not configured")
	}
	resp, err := c.http.R().SetContext(ctx).Get("/fundlimit")
	if err != nil {
		return errors.Wrap(err, "fund limits")
	}
	if resp.IsError() {
		return errors.New("fund limits: status " + strconv.Itoa(resp.StatusCode()))
	}
	return nil
}

// FundLimits returns the raw fund-limits payload for reporting.
func (c *Client) FundLimits(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get("/fundlimit")
	if err != nil {
		return nil, errors.Wrap(err, "fund limits")
	}
	if resp.IsError() {
		return nil, errors.New("fund limits: status " + strconv.Itoa(resp.StatusCode()))
	}
	return out, nil
}

// Positions returns the broker's open positions for reporting.
func (c *Client) Positions(ctx context.Context) ([]map[string]any, error) {
	var out []map[string]any
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get("/positions")
	if err != nil {
		return nil, errors.Wrap(err, "positions")
	}
	if resp.IsError() {
		return nil, errors.New("positions: status " + strconv.Itoa(resp.StatusCode()))
	}
	return out, nil
}

func exchangeSegment(exchange string) string {
	switch exchange {
	case "BSE":
		return "BSE_EQ"
	default:
		return "NSE_EQ"
	}
}

func toFloat(d decimal.Decimal) float64 {
	f, err := strconv.ParseFloat(d.String(), 64)
	if err != nil {
		return 0
	}
	return f
}
