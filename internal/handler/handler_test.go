package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathanyu/stock-exchange/internal/domain"
	"github.com/nathanyu/stock-exchange/internal/gateway"
	"github.com/nathanyu/stock-exchange/internal/marketdata"
	"github.com/nathanyu/stock-exchange/internal/registry"
	"github.com/nathanyu/stock-exchange/internal/sequencer"
)

func newTestRouter(t *testing.T) (*gin.Engine, *sequencer.Sequencer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := registry.New()
	seq := sequencer.NewSequencer(reg, 100)
	seq.Start()
	t.Cleanup(seq.Stop)

	gw := gateway.NewGateway(seq.OrderIn)
	pub := marketdata.NewPublisher(100)
	pub.Start()
	t.Cleanup(pub.Stop)

	go func() {
		for evt := range seq.ExecutionOut {
			pub.ExecutionIn <- evt
		}
	}()

	h := NewHandler(gw, reg, pub)
	r := gin.New()
	h.RegisterRoutes(r)
	return r, seq
}

func doRequest(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := doRequest(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPlaceLimit_RestsOrder(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doRequest(r, http.MethodPost, "/v1/orders", PlaceLimitRequest{
		Symbol: "AAPL", Side: domain.SideSell, Price: 10010, Quantity: 100,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var order domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.NotZero(t, order.ID)
	assert.Equal(t, domain.OrderStatusResting, order.Status)
}

func TestPlaceLimit_RejectsInvalidPrice(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doRequest(r, http.MethodPost, "/v1/orders", map[string]any{
		"symbol": "AAPL", "side": "sell", "price": 0, "quantity": 100,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelOrder_RoundTrip(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doRequest(r, http.MethodPost, "/v1/orders", PlaceLimitRequest{
		Symbol: "AAPL", Side: domain.SideBuy, Price: 10000, Quantity: 50,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var order domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))

	rec = doRequest(r, http.MethodDelete, "/v1/orders/"+itoa(order.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(r, http.MethodGet, "/v1/orders/"+itoa(order.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, domain.OrderStatusCanceled, fetched.Status)
}

func TestExecuteMarket_SweepsRestingOrder(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doRequest(r, http.MethodPost, "/v1/orders", PlaceLimitRequest{
		Symbol: "AAPL", Side: domain.SideSell, Price: 10010, Quantity: 100,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(r, http.MethodPost, "/v1/market-orders", ExecuteMarketRequest{
		Symbol: "AAPL", Side: domain.SideBuy, Quantity: 60,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Fills    []domain.Fill `json:"fills"`
		Residual int64         `json:"residual"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Fills, 1)
	assert.Equal(t, int64(0), resp.Residual)
}

func TestGetDepth_RequiresSymbol(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := doRequest(r, http.MethodGet, "/v1/marketdata/depth", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetDepth_ReflectsRestingOrders(t *testing.T) {
	r, _ := newTestRouter(t)

	doRequest(r, http.MethodPost, "/v1/orders", PlaceLimitRequest{
		Symbol: "AAPL", Side: domain.SideBuy, Price: 9990, Quantity: 25,
	})

	rec := doRequest(r, http.MethodGet, "/v1/marketdata/depth?symbol=AAPL", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotNil(t, resp["best_bid"])
}

func itoa(id domain.OrderID) string {
	b, _ := json.Marshal(id)
	return string(b)
}
