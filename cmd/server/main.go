package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nathanyu/stock-exchange/internal/domain"
	"github.com/nathanyu/stock-exchange/internal/gateway"
	"github.com/nathanyu/stock-exchange/internal/handler"
	"github.com/nathanyu/stock-exchange/internal/marketdata"
	"github.com/nathanyu/stock-exchange/internal/registry"
	"github.com/nathanyu/stock-exchange/internal/sequencer"
	"github.com/nathanyu/stock-exchange/internal/telemetry"
)

const channelBufferSize = 4096

func main() {
	log.Println("Starting stock exchange service...")

	// --- Core components ---

	// Registry (one matching.Engine per symbol, created on first touch)
	reg := registry.New()

	// Sequencer (single writer; stamps sequence IDs, drives the registry)
	seq := sequencer.NewSequencer(reg, channelBufferSize)

	// Gateway (order id assignment, status tracking, forwards to sequencer)
	gw := gateway.NewGateway(seq.OrderIn)

	// Market data publisher (candlesticks, fill tape)
	publisher := marketdata.NewPublisher(channelBufferSize)

	// --- Wire channels ---
	//
	// API Handler → Gateway → [OrderOut == seq.OrderIn] → Sequencer
	//                                                         ↓
	//                                    Market Data ← [ExecutionOut] ← Sequencer
	//
	// The gateway replies to its own caller synchronously over each
	// event's Reply channel; ExecutionOut only carries the outcome of each
	// successful operation (placement, cancel or sweep) onward to observers
	// that don't block the caller.

	go func() {
		for event := range seq.ExecutionOut {
			select {
			case publisher.ExecutionIn <- event:
			default:
				log.Println("[main] WARN: market data execution channel full")
			}
			recordExecutionMetrics(reg, event)
		}
	}()

	seq.Start()
	publisher.Start()

	// --- HTTP Server ---
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	r := gin.Default()
	r.Use(telemetry.PrometheusMiddleware())

	h := handler.NewHandler(gw, reg, publisher)
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// --- Metrics Server ---
	metricsPort := os.Getenv("METRICS_PORT")
	if metricsPort == "" {
		metricsPort = "9090"
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:    ":" + metricsPort,
		Handler: metricsMux,
	}

	// Start servers
	go func() {
		log.Printf("Metrics server listening on :%s", metricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("metrics server error: %v", err)
		}
	}()

	go func() {
		log.Printf("HTTP server listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	seq.Stop()
	publisher.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	if err := metricsSrv.Shutdown(ctx); err != nil {
		log.Printf("Metrics server shutdown error: %v", err)
	}

	log.Println("Stock exchange service stopped.")
}

// recordExecutionMetrics updates the fill counter and best-price depth
// gauges after every successful operation the sequencer publishes
// (placement, cancel or sweep). Depth is read back from the engine
// rather than derived from the event, since a sweep can empty out more
// than one level.
func recordExecutionMetrics(reg *registry.Registry, event *domain.ExecutionEvent) {
	telemetry.FillsTotal.WithLabelValues(event.Symbol).Add(float64(len(event.Fills)))

	engine := reg.Get(event.Symbol)
	if bid, ok := engine.BestBid(); ok {
		telemetry.OrderBookDepth.WithLabelValues(event.Symbol, string(domain.SideBuy)).Set(float64(bid.Quantity))
	} else {
		telemetry.OrderBookDepth.WithLabelValues(event.Symbol, string(domain.SideBuy)).Set(0)
	}
	if ask, ok := engine.BestAsk(); ok {
		telemetry.OrderBookDepth.WithLabelValues(event.Symbol, string(domain.SideSell)).Set(float64(ask.Quantity))
	} else {
		telemetry.OrderBookDepth.WithLabelValues(event.Symbol, string(domain.SideSell)).Set(0)
	}
}
