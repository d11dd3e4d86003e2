package config

import (
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/joripage/exchange-venue/pkg/gateway"
	redis_wrapper "github.com/joripage/exchange-venue/pkg/infra/redis"
	"github.com/joripage/exchange-venue/pkg/quote"
)

type VenueConfig struct {
	InitialCash string `yaml:"initial_cash"`
	TradeCap    int64  `yaml:"trade_cap"`
	TapeDepth   int    `yaml:"tape_depth"`
}

type QuoteConfig struct {
	quote.HTTPClientConfig `yaml:",inline"`
	CacheTTLSeconds        int `yaml:"cache_ttl_seconds"`
}

type AppConfig struct {
	ServiceName string                     `yaml:"service_name"`
	ListenAddr  string                     `yaml:"listen_addr"`
	Venue       VenueConfig                `yaml:"venue"`
	Quote       QuoteConfig                `yaml:"quote"`
	Gateway     gateway.Config             `yaml:"gateway"`
	Redis       *redis_wrapper.RedisConfig `yaml:"redis"`
}

// Load load config from file and environment variables.
func Load(filePath string) (*AppConfig, error) {
	if len(filePath) == 0 {
		filePath = os.Getenv("CONFIG_FILE")
	}

	fields := []interface{}{
		"func",
		"config.readFromFile",
		"filePath",
		filePath,
	}

	sugar := zap.S().With(fields...)

	sugar.Debug("Load config...")
	zap.S().Debugf("CONFIG_FILE=%v", filePath)

	configBytes, err := os.ReadFile(filePath)
	if err != nil {
		sugar.Error("Failed to load config file")
		return nil, err
	}
	configBytes = []byte(os.ExpandEnv(string(configBytes)))

	cfg := &AppConfig{}

	err = yaml.Unmarshal(configBytes, cfg)
	if err != nil {
		sugar.Error("Failed to parse config file")
		return nil, err
	}

	zap.S().Debugf("config: %+v", cfg)

	return cfg, nil
}
