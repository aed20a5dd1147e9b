// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Source modes for price acquisition.
const (
	SourceSimulated = "simulated"
	SourceCoinGecko = "coingecko"
	SourceBinance   = "binance"
)

// Config holds all application configuration.
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Gas         GasConfig         `mapstructure:"gas"`
	Scan        ScanConfig        `mapstructure:"scan"`
	Triangular  TriangularConfig  `mapstructure:"triangular"`
	Slippage    SlippageConfig    `mapstructure:"slippage"`
	Monitor     MonitorConfig     `mapstructure:"monitor"`
	PriceSource PriceSourceConfig `mapstructure:"price_source"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// GasConfig holds gas pricing settings.
type GasConfig struct {
	PriceGwei   float64 `mapstructure:"price_gwei"`
	ETHPriceUSD float64 `mapstructure:"eth_price_usd"`
	RPCURL      string  `mapstructure:"rpc_url"` // empty = static oracle
}

// ScanConfig holds direct arbitrage scan settings.
type ScanConfig struct {
	Pairs        []string `mapstructure:"pairs"`
	Venues       []string `mapstructure:"venues"`
	MinProfitPct float64  `mapstructure:"min_profit_pct"`
}

// TriangularConfig holds triangular scan settings.
type TriangularConfig struct {
	Venue        string  `mapstructure:"venue"`
	MinProfitPct float64 `mapstructure:"min_profit_pct"`
}

// SlippageConfig holds slippage model settings.
type SlippageConfig struct {
	BasePct      float64 `mapstructure:"base_pct"`
	LiquidityUSD float64 `mapstructure:"liquidity_usd"`
}

// MonitorConfig holds continuous monitoring settings.
type MonitorConfig struct {
	Interval    time.Duration `mapstructure:"interval"`
	AlertNetPct float64       `mapstructure:"alert_net_pct"`
	TUIMode     bool          `mapstructure:"-"` // set at runtime, not from config file
}

// PriceSourceConfig selects and tunes the quote source.
type PriceSourceConfig struct {
	Mode            string        `mapstructure:"mode"` // simulated, coingecko, binance
	BinanceWSURL    string        `mapstructure:"binance_ws_url"`
	BinanceHTTPURL  string        `mapstructure:"binance_http_url"`
	CoinGeckoURL    string        `mapstructure:"coingecko_url"`
	CoinGeckoAPIKey string        `mapstructure:"coingecko_api_key"`
	StaleTimeout    time.Duration `mapstructure:"stale_timeout"`
	RequestsPerMin  int           `mapstructure:"requests_per_min"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	TraceExporter  string `mapstructure:"trace_exporter"` // otlp-grpc, otlp-http, zipkin, console, empty
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	ZipkinURL      string `mapstructure:"zipkin_url"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
	HealthPort     int    `mapstructure:"health_port"`
}

// GasPriceGweiDecimal returns the configured gas price as decimal.
func (c *GasConfig) GasPriceGweiDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.PriceGwei)
}

// ETHPriceUSDDecimal returns the reference ETH price as decimal.
func (c *GasConfig) ETHPriceUSDDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.ETHPriceUSD)
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("ARB")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// No config file is fine; env vars and defaults apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "ARB_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "ARB_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "ARB_LOG_LEVEL", "LOG_LEVEL")

	// Gas
	v.BindEnv("gas.price_gwei", "ARB_GAS_PRICE_GWEI")
	v.BindEnv("gas.eth_price_usd", "ARB_ETH_PRICE_USD")
	v.BindEnv("gas.rpc_url", "ARB_ETH_RPC_URL", "ETH_RPC_URL")

	// Scan
	v.BindEnv("scan.pairs", "ARB_SCAN_PAIRS")
	v.BindEnv("scan.min_profit_pct", "ARB_SCAN_MIN_PROFIT_PCT")

	// Triangular
	v.BindEnv("triangular.venue", "ARB_TRIANGULAR_VENUE")
	v.BindEnv("triangular.min_profit_pct", "ARB_TRIANGULAR_MIN_PROFIT_PCT")

	// Monitor
	v.BindEnv("monitor.interval", "ARB_MONITOR_INTERVAL")
	v.BindEnv("monitor.alert_net_pct", "ARB_MONITOR_ALERT_NET_PCT")

	// Price source. The alias must not be ARB_PRICE_SOURCE: with the ARB
	// prefix and AutomaticEnv that name also resolves the whole
	// price_source section and shadows every key under it.
	v.BindEnv("price_source.mode", "ARB_PRICE_SOURCE_MODE")
	v.BindEnv("price_source.binance_ws_url", "ARB_BINANCE_WS_URL", "BINANCE_WS_URL")
	v.BindEnv("price_source.coingecko_api_key", "ARB_COINGECKO_API_KEY", "COINGECKO_API_KEY")

	// Telemetry
	v.BindEnv("telemetry.enabled", "ARB_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "ARB_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "ARB_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "arb-finder")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("gas.price_gwei", 30.0)
	v.SetDefault("gas.eth_price_usd", 2500.0)

	v.SetDefault("scan.pairs", []string{"ETH/USDC"})
	v.SetDefault("scan.min_profit_pct", 0.0)

	v.SetDefault("triangular.venue", "binance")
	v.SetDefault("triangular.min_profit_pct", 0.1)

	v.SetDefault("slippage.base_pct", 0.1)
	v.SetDefault("slippage.liquidity_usd", 1_000_000.0)

	v.SetDefault("monitor.interval", "5s")
	v.SetDefault("monitor.alert_net_pct", 0.3)

	v.SetDefault("price_source.mode", SourceSimulated)
	v.SetDefault("price_source.stale_timeout", "5s")
	v.SetDefault("price_source.requests_per_min", 30)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "arb-finder")
	v.SetDefault("telemetry.trace_exporter", "")
	v.SetDefault("telemetry.prometheus_port", 9090)
	v.SetDefault("telemetry.health_port", 8081)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Gas.PriceGwei <= 0 {
		return fmt.Errorf("gas.price_gwei must be positive, got %v", c.Gas.PriceGwei)
	}
	if c.Gas.ETHPriceUSD <= 0 {
		return fmt.Errorf("gas.eth_price_usd must be positive, got %v", c.Gas.ETHPriceUSD)
	}
	if c.Slippage.BasePct < 0 {
		return fmt.Errorf("slippage.base_pct must not be negative, got %v", c.Slippage.BasePct)
	}
	if c.Slippage.LiquidityUSD <= 0 {
		return fmt.Errorf("slippage.liquidity_usd must be positive, got %v", c.Slippage.LiquidityUSD)
	}
	if c.Monitor.Interval <= 0 {
		return fmt.Errorf("monitor.interval must be positive, got %v", c.Monitor.Interval)
	}
	switch c.PriceSource.Mode {
	case SourceSimulated, SourceCoinGecko, SourceBinance:
	default:
		return fmt.Errorf("price_source.mode must be one of %s, %s, %s; got %q",
			SourceSimulated, SourceCoinGecko, SourceBinance, c.PriceSource.Mode)
	}
	if len(c.Scan.Pairs) == 0 {
		return fmt.Errorf("scan.pairs cannot be empty")
	}
	return nil
}
