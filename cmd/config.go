package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"

	"dispatch/internal/core/domain/services"
)

// EnvPrefix prefixes environment overrides, with "__" separating nested keys:
// DISPATCH_DB__PASSWORD overrides db.password.
const EnvPrefix = "DISPATCH_"

type Config struct {
	HTTP struct {
		Port string `koanf:"port"`
	} `koanf:"http"`

	DB struct {
		Host            string        `koanf:"host"`
		Port            string        `koanf:"port"`
		User            string        `koanf:"user"`
		Password        string        `koanf:"password"`
		Name            string        `koanf:"name"`
		SslMode         string        `koanf:"sslmode"`
		MaxOpenConns    int           `koanf:"max_open_conns"`
		MaxIdleConns    int           `koanf:"max_idle_conns"`
		ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
		AutoMigrate     bool          `koanf:"auto_migrate"`
	} `koanf:"db"`

	Kafka struct {
		Brokers           []string `koanf:"brokers"`
		OrderChangedTopic string   `koanf:"order_changed_topic"`
		DLQTopic          string   `koanf:"dlq_topic"`
		ConsumerGroup     string   `koanf:"consumer_group"`
	} `koanf:"kafka"`

	Redis struct {
		Addr     string        `koanf:"addr"`
		Password string        `koanf:"password"`
		DB       int           `koanf:"db"`
		DedupTTL time.Duration `koanf:"dedup_ttl"`
	} `koanf:"redis"`

	RabbitMQ struct {
		URL            string `koanf:"url"`
		AlertsExchange string `koanf:"alerts_exchange"`
	} `koanf:"rabbitmq"`

	Push struct {
		Endpoint string        `koanf:"endpoint"`
		Token    string        `koanf:"token"`
		Timeout  time.Duration `koanf:"timeout"`
	} `koanf:"push"`

	Security struct {
		JWTSecret string `koanf:"jwt_secret"`
		Issuer    string `koanf:"issuer"`
	} `koanf:"security"`

	Log struct {
		Level string `koanf:"level"`
		File  string `koanf:"file"`
	} `koanf:"log"`

	Sweeps struct {
		ExpireOrders   time.Duration `koanf:"expire_orders"`
		CleanLocations time.Duration `koanf:"clean_locations"`
		RelayChanges   time.Duration `koanf:"relay_changes"`
		LedgerAudit    time.Duration `koanf:"ledger_audit"`
		RunTimeout     time.Duration `koanf:"run_timeout"`
	} `koanf:"sweeps"`

	Order struct {
		MatchTimeout   time.Duration `koanf:"match_timeout"`
		LocationMaxAge time.Duration `koanf:"location_max_age"`
	} `koanf:"order"`

	Exclusivity struct {
		AdminWindow time.Duration `koanf:"admin_window"`
	} `koanf:"exclusivity"`

	Fees struct {
		StartRate      string `koanf:"start_rate"`
		CommissionRate string `koanf:"commission_rate"`
	} `koanf:"fees"`
}

// LoadConfig reads base.yaml from dir and overlays DISPATCH_* environment variables.
// A missing base file is allowed so the service can run from the environment alone.
func LoadConfig(dir string) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", dir)), yaml.Parser()); err != nil &&
		!errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load base: %w", err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	// Brokers given as one comma separated variable.
	if len(cfg.Kafka.Brokers) == 1 && strings.Contains(cfg.Kafka.Brokers[0], ",") {
		cfg.Kafka.Brokers = strings.Split(cfg.Kafka.Brokers[0], ",")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultConfig holds the values used when neither the file nor the environment sets a key.
func DefaultConfig() Config {
	var cfg Config
	cfg.HTTP.Port = "8080"
	cfg.DB.Port = "5432"
	cfg.DB.SslMode = "disable"
	cfg.DB.MaxOpenConns = 20
	cfg.DB.MaxIdleConns = 5
	cfg.DB.ConnMaxLifetime = 30 * time.Minute
	cfg.Kafka.OrderChangedTopic = "order.changed"
	cfg.Kafka.DLQTopic = "order.changed.dlq"
	cfg.Kafka.ConsumerGroup = "dispatch-core"
	cfg.Redis.DedupTTL = 24 * time.Hour
	cfg.RabbitMQ.AlertsExchange = "dispatch.alerts"
	cfg.Push.Timeout = 10 * time.Second
	cfg.Security.Issuer = "dispatch"
	cfg.Log.Level = "info"
	cfg.Sweeps.ExpireOrders = 2 * time.Minute
	cfg.Sweeps.CleanLocations = 15 * time.Minute
	cfg.Sweeps.RelayChanges = 5 * time.Second
	cfg.Sweeps.LedgerAudit = time.Hour
	cfg.Sweeps.RunTimeout = time.Minute
	cfg.Order.MatchTimeout = 10 * time.Minute
	cfg.Order.LocationMaxAge = time.Hour
	cfg.Exclusivity.AdminWindow = 60 * time.Second
	cfg.Fees.StartRate = "0.10"
	cfg.Fees.CommissionRate = "0.20"
	return cfg
}

func (c Config) Validate() error {
	var errList []error
	if c.DB.Host == "" || c.DB.User == "" || c.DB.Name == "" {
		errList = append(errList, errors.New("db.host, db.user and db.name required"))
	}
	if len(c.Kafka.Brokers) == 0 {
		errList = append(errList, errors.New("kafka.brokers required"))
	}
	if c.Kafka.OrderChangedTopic == "" || c.Kafka.DLQTopic == "" {
		errList = append(errList, errors.New("kafka.order_changed_topic and kafka.dlq_topic required"))
	}
	if c.Security.JWTSecret == "" {
		errList = append(errList, errors.New("security.jwt_secret required"))
	}
	if c.Exclusivity.AdminWindow <= 0 {
		errList = append(errList, errors.New("exclusivity.admin_window must be positive"))
	}
	if _, err := c.FeeSchedule(); err != nil {
		errList = append(errList, fmt.Errorf("fees: %w", err))
	}
	return errors.Join(errList...)
}

// DSN is the libpq connection string shared by GORM and the outbox listener.
func (c Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DB.User, c.DB.Password),
		Host:     c.DB.Host + ":" + c.DB.Port,
		Path:     c.DB.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.DB.SslMode),
	}
	return u.String()
}

func (c Config) FeeSchedule() (services.FeeSchedule, error) {
	start, err := decimal.NewFromString(c.Fees.StartRate)
	if err != nil {
		return services.FeeSchedule{}, fmt.Errorf("start_rate: %w", err)
	}
	commission, err := decimal.NewFromString(c.Fees.CommissionRate)
	if err != nil {
		return services.FeeSchedule{}, fmt.Errorf("commission_rate: %w", err)
	}
	return services.NewFeeSchedule(start, commission)
}
