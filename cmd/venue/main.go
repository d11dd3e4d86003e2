package main

import (
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/joripage/exchange-venue/config"
	"github.com/joripage/exchange-venue/pkg/gateway"
	redis_wrapper "github.com/joripage/exchange-venue/pkg/infra/redis"
	"github.com/joripage/exchange-venue/pkg/logging"
	"github.com/joripage/exchange-venue/pkg/quote"
	"github.com/joripage/exchange-venue/pkg/venue"
)

func main() {
	go func() {
		http.ListenAndServe("localhost:6060", nil)
	}()

	configFile := flag.String("config", "", "path to config file")
	flag.Parse()

	log := logging.NewLogger(logging.INFO)
	defer log.Sync()
	log.ReplaceGlobals()

	cfg, err := config.Load(*configFile)
	if err != nil {
		zap.S().Fatalf("load config fail: %+v", err)
	}

	var quotes quote.Client = quote.NewHTTPClient(&cfg.Quote.HTTPClientConfig)
	if cfg.Redis != nil {
		rdb, err := redis_wrapper.InitRedis(cfg.Redis)
		if err != nil {
			zap.S().Fatalf("init redis fail: %+v", err)
		}
		ttl := time.Duration(cfg.Quote.CacheTTLSeconds) * time.Second
		quotes = quote.NewCachedClient(quotes, rdb, ttl)
	}

	v := venue.New(venueConfig(cfg.Venue))
	srv := gateway.NewServer(v, quotes, log, cfg.Gateway)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Handler(),
	}
	go func() {
		zap.S().Infow("venue listening", "addr", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.S().Fatalf("serve fail: %+v", err)
		}
	}()
	fmt.Println("Venue started. Press Ctrl+C to exit.")

	<-sigs
	fmt.Println("Shutting down...")
	httpServer.Close()
	fmt.Println("Exited cleanly.")
}

func venueConfig(cfg config.VenueConfig) venue.Config {
	out := venue.Config{
		TradeCap:  cfg.TradeCap,
		TapeDepth: cfg.TapeDepth,
	}
	if cfg.InitialCash != "" {
		cash, err := decimal.NewFromString(cfg.InitialCash)
		if err != nil {
			zap.S().Fatalf("bad initial_cash %q: %+v", cfg.InitialCash, err)
		}
		out.InitialCash = cash
	}
	return out
}
