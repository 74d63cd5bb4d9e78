// Package handler wires the gin HTTP surface onto the gateway, registry
// and market data publisher. It never mutates an orderbook.Book or
// matching.Engine itself — placements, cancels and sweeps go through the
// gateway; the only direct engine access is the depth endpoint's read of
// the engine it gets from the registry — this layer only translates
// requests and responses.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nathanyu/stock-exchange/internal/domain"
	"github.com/nathanyu/stock-exchange/internal/gateway"
	"github.com/nathanyu/stock-exchange/internal/marketdata"
	"github.com/nathanyu/stock-exchange/internal/registry"
)

// Handler holds the HTTP handler dependencies.
type Handler struct {
	gateway   *gateway.Gateway
	registry  *registry.Registry
	publisher *marketdata.Publisher
}

// NewHandler creates a new Handler.
func NewHandler(gw *gateway.Gateway, reg *registry.Registry, publisher *marketdata.Publisher) *Handler {
	return &Handler{
		gateway:   gw,
		registry:  reg,
		publisher: publisher,
	}
}

// RegisterRoutes sets up the Gin routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	v1 := r.Group("/v1")
	{
		v1.POST("/orders", h.PlaceLimit)
		v1.DELETE("/orders/:id", h.CancelOrder)
		v1.GET("/orders/:id", h.GetOrder)
		v1.POST("/market-orders", h.ExecuteMarket)
		v1.GET("/marketdata/depth", h.GetDepth)
		v1.GET("/marketdata/candles", h.GetCandles)
		v1.GET("/fills", h.GetFills)
	}
}

// Health returns a health check response.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "stock-exchange",
	})
}

// PlaceLimitRequest is the request body for resting a new limit order.
type PlaceLimitRequest struct {
	Symbol   string      `json:"symbol" binding:"required"`
	Side     domain.Side `json:"side" binding:"required"`
	Price    int64       `json:"price" binding:"required"`
	Quantity int64       `json:"quantity" binding:"required"`
}

// PlaceLimit handles POST /v1/orders. It never matches on placement —
// resting orders are makers only; a crossing price simply rests at the
// back of its own level until a market order sweeps it.
func (h *Handler) PlaceLimit(c *gin.Context) {
	var req PlaceLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Side != domain.SideBuy && req.Side != domain.SideSell {
		c.JSON(http.StatusBadRequest, gin.H{"error": "side must be 'buy' or 'sell'"})
		return
	}

	order, err := h.gateway.PlaceLimit(req.Symbol, req.Side, req.Price, req.Quantity)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, order)
}

// CancelOrder handles DELETE /v1/orders/:id.
func (h *Handler) CancelOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	order, err := h.gateway.Cancel(domain.OrderID(id))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, order)
}

// GetOrder handles GET /v1/orders/:id.
func (h *Handler) GetOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	order := h.gateway.GetOrder(domain.OrderID(id))
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}

	c.JSON(http.StatusOK, order)
}

// ExecuteMarketRequest is the request body for an incoming market sweep.
type ExecuteMarketRequest struct {
	Symbol   string      `json:"symbol" binding:"required"`
	Side     domain.Side `json:"side" binding:"required"`
	Quantity int64       `json:"quantity" binding:"required"`
}

// ExecuteMarket handles POST /v1/market-orders. A sweep against an empty
// opposite side is not an error — it simply returns zero fills with the
// full quantity left as residual.
func (h *Handler) ExecuteMarket(c *gin.Context) {
	var req ExecuteMarketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Side != domain.SideBuy && req.Side != domain.SideSell {
		c.JSON(http.StatusBadRequest, gin.H{"error": "side must be 'buy' or 'sell'"})
		return
	}

	fills, residual, err := h.gateway.ExecuteMarket(req.Symbol, req.Side, req.Quantity)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"fills":    fills,
		"residual": residual,
	})
}

// GetDepth handles GET /v1/marketdata/depth.
func (h *Handler) GetDepth(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol is required"})
		return
	}

	n, err := strconv.Atoi(c.DefaultQuery("levels", "10"))
	if err != nil || n <= 0 {
		n = 10
	}

	engine := h.registry.Get(symbol)
	bid, hasBid := engine.BestBid()
	ask, hasAsk := engine.BestAsk()

	resp := gin.H{
		"symbol": symbol,
		"bids":   engine.Depth(domain.SideBuy, n),
		"asks":   engine.Depth(domain.SideSell, n),
	}
	if hasBid {
		resp["best_bid"] = bid
	}
	if hasAsk {
		resp["best_ask"] = ask
	}

	c.JSON(http.StatusOK, resp)
}

// GetCandles handles GET /v1/marketdata/candles.
func (h *Handler) GetCandles(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol is required"})
		return
	}

	count, err := strconv.Atoi(c.DefaultQuery("count", "100"))
	if err != nil || count <= 0 {
		count = 100
	}

	candles := h.publisher.GetCandles(symbol, count)
	if candles == nil {
		candles = []*domain.Candlestick{}
	}

	c.JSON(http.StatusOK, candles)
}

// GetFills handles GET /v1/fills.
func (h *Handler) GetFills(c *gin.Context) {
	symbol := c.Query("symbol")

	var makerID domain.OrderID
	if idStr := c.Query("maker_order_id"); idStr != "" {
		id, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid maker_order_id"})
			return
		}
		makerID = domain.OrderID(id)
	}

	var since time.Time
	if sinceStr := c.Query("since"); sinceStr != "" {
		parsed, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid since format, use RFC3339"})
			return
		}
		since = parsed
	}

	fills := h.publisher.GetFills(symbol, makerID, since)
	if fills == nil {
		fills = []domain.Fill{}
	}

	c.JSON(http.StatusOK, fills)
}
