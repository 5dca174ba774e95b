package dhan

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"main/internal/broker"
	"main/internal/model/enum"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{
		BaseURL:     srv.URL,
		ClientID:    "client-1",
		AccessToken: "token-1",
	})
}

func TestConfigured(t *testing.T) {
	if New(Config{}).Configured() {
		t.Fatal("empty credentials should not report configured")
	}
	if !New(Config{ClientID: "c", AccessToken: "t"}).Configured() {
		t.Fatal("full credentials should report configured")
	}
}

func TestIntradayCandlesNormalized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/charts/intraday", r.URL.Path)
		require.Equal(t, "token-1", r.Header.Get("access-token"))

		var req intradayRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "11536", req.SecurityID)
		assert.Equal(t, "NSE_EQ", req.ExchangeSegment)

		// Out of order with a duplicate timestamp.
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"open":      [2, 1, 2.5, 3],
			"high":      [2, 1, 2.5, 3],
			"low":       [2, 1, 2.5, 3],
			"close":     [2, 1, 2.5, 3],
			"volume":    [10, 10, 10, 10],
			"timestamp": [60, 0, 60, 120]
		}`))
	})

	bars := client.IntradayCandles(context.Background(), "11536", "NSE")
	require.Len(t, bars, 3)
	assert.Equal(t, []float64{1, 2, 3}, []float64{bars[0].Close, bars[1].Close, bars[2].Close})
	for i := 1; i < len(bars); i++ {
		assert.True(t, bars[i].Ts.After(bars[i-1].Ts), "bars must be strictly ascending")
	}
}

func TestIntradayCandlesServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	if bars := client.IntradayCandles(context.Background(), "11536", "NSE"); bars != nil {
		t.Fatalf("server error should yield nil bars, got %d", len(bars))
	}
}

func TestIntradayCandlesUnconfigured(t *testing.T) {
	client := New(Config{})
	if bars := client.IntradayCandles(context.Background(), "11536", "NSE"); bars != nil {
		t.Fatal("unconfigured client should yield nil bars")
	}
}

func TestSubmitSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders", r.URL.Path)

		var req orderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "client-1", req.DhanClientID)
		assert.Equal(t, "BUY", req.TransactionType)
		assert.Equal(t, "NSE_EQ", req.ExchangeSegment)
		assert.Equal(t, "INTRADAY", req.ProductType)
		assert.Zero(t, req.Price, "market orders carry no price")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"orderId":"987","orderStatus":"TRANSIT"}`))
	})

	result := client.Submit(context.Background(), broker.OrderRequest{
		Symbol:     "TCS",
		Exchange:   "NSE",
		Side:       enum.SideBuy,
		Qty:        1,
		OrderType:  enum.OrderTypeMarket,
		Price:      101.2,
		Product:    enum.ProductIntraday,
		SecurityID: "11536",
	})
	require.True(t, result.OK)
	assert.Equal(t, "987", result.OrderID)
}

func TestSubmitRejection(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errorMessage":"insufficient funds"}`))
	})

	result := client.Submit(context.Background(), broker.OrderRequest{
		Symbol:     "TCS",
		Side:       enum.SideBuy,
		Qty:        1,
		OrderType:  enum.OrderTypeMarket,
		SecurityID: "11536",
	})
	require.False(t, result.OK)
	assert.Equal(t, "insufficient funds", result.Err)
}

func TestSubmitUnconfigured(t *testing.T) {
	result := New(Config{}).Submit(context.Background(), broker.OrderRequest{})
	if result.OK {
		t.Fatal("unconfigured client must not accept orders")
	}
	if result.Err == "" {
		t.Fatal("unconfigured client must explain the rejection")
	}
}

func TestConnectionCheck(t *testing.T) {
	t.Run("valid credentials", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/fundlimit", r.URL.Path)
			require.Equal(t, "token-1", r.Header.Get("access-token"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"availabelBalance": 100000}`))
		})
		require.NoError(t, client.TestConnection(context.Background()))
	})

	t.Run("rejected credentials surface to the caller", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		err := client.TestConnection(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "401")
	})

	t.Run("unconfigured", func(t *testing.T) {
		require.Error(t, New(Config{}).TestConnection(context.Background()))
	})
}

func TestFundLimits(t *testing.T) {
	t.Run("payload decoded", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/fundlimit", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"availabelBalance": 100000, "sodLimit": 50000}`))
		})
		limits, err := client.FundLimits(context.Background())
		require.NoError(t, err)
		assert.Equal(t, float64(100000), limits["availabelBalance"])
	})

	t.Run("server error surfaces", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		_, err := client.FundLimits(context.Background())
		require.Error(t, err)
	})
}

func TestPositions(t *testing.T) {
	t.Run("payload decoded", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/positions", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"tradingSymbol": "TCS", "netQty": 1}]`))
		})
		positions, err := client.Positions(context.Background())
		require.NoError(t, err)
		require.Len(t, positions, 1)
		assert.Equal(t, "TCS", positions[0]["tradingSymbol"])
	})

	t.Run("server error surfaces", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		_, err := client.Positions(context.Background())
		require.Error(t, err)
	})
}

func TestExchangeSegment(t *testing.T) {
	if got := exchangeSegment("BSE"); got != "BSE_EQ" {
		t.Fatalf("BSE: got %s", got)
	}
	if got := exchangeSegment("NSE"); got != "NSE_EQ" {
		t.Fatalf("NSE: got %s", got)
	}
	if got := exchangeSegment(""); got != "NSE_EQ" {
		t.Fatalf("default: got %s", got)
	}
}
