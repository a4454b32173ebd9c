// Package config loads process configuration from the environment
// (optionally pre-populated from a .env file in local/dev runs), with
// fail-fast validation at startup.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is every tunable the process needs at startup. Unset environment
// variables fall back to the defaults below.
type Config struct {
	IntakeWorkers int

	SnapshotEnabled        bool
	SnapshotIntervalSecond int
	SnapshotDataDir        string

	PriceScale int32

	KafkaBrokers     []string
	KafkaIntakeTopic string
	KafkaTradeTopic  string
	KafkaOrderTopic  string
	KafkaTickTopic   string
	KafkaErrorTopic  string
	KafkaGroupID     string

	HTTPListenAddr string

	MySQLDSN string

	Debug bool
}

// Load reads a .env file if present (ignored when absent; .env is a
// dev-only convenience, never required) then builds Config from the
// environment and validates the worker count, snapshot interval, price
// scale, broker list and listen address, which the matching core itself
// never validates. A value that does not parse as its expected type falls
// back to the default rather than failing.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		IntakeWorkers:          envInt("INTAKE_WORKERS", 4),
		SnapshotEnabled:        envBool("SNAPSHOT_ENABLED", true),
		SnapshotIntervalSecond: envInt("SNAPSHOT_INTERVAL_SECONDS", 60),
		SnapshotDataDir:        envString("SNAPSHOT_DATA_DIR", "./data/snapshot"),
		PriceScale:             int32(envInt("PRICE_SCALE", 2)),
		KafkaBrokers:           []string{envString("KAFKA_BROKERS", "localhost:9092")},
		KafkaIntakeTopic:       envString("KAFKA_INTAKE_TOPIC", "orders.intake"),
		KafkaTradeTopic:        envString("KAFKA_TRADE_TOPIC", "trades"),
		KafkaOrderTopic:        envString("KAFKA_ORDER_TOPIC", "orders"),
		KafkaTickTopic:         envString("KAFKA_TICK_TOPIC", "ticks"),
		KafkaErrorTopic:        envString("KAFKA_ERROR_TOPIC", "errors"),
		KafkaGroupID:           envString("KAFKA_GROUP_ID", "matching-engine"),
		HTTPListenAddr:         envString("HTTP_LISTEN_ADDR", ":3000"),
		MySQLDSN:               envString("MYSQL_DSN", "root:root@tcp(127.0.0.1:3306)/matching?parseTime=true"),
		Debug:                  envBool("DEBUG", false),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.IntakeWorkers < 1 {
		return fmt.Errorf("config: intake.workers must be >= 1, got %d", c.IntakeWorkers)
	}
	if c.SnapshotEnabled && c.SnapshotIntervalSecond < 1 {
		return fmt.Errorf("config: snapshot.interval_seconds must be >= 1 when snapshot is enabled, got %d", c.SnapshotIntervalSecond)
	}
	if c.PriceScale < 0 {
		return fmt.Errorf("config: price.scale must be >= 0, got %d", c.PriceScale)
	}
	if len(c.KafkaBrokers) == 0 || c.KafkaBrokers[0] == "" {
		return fmt.Errorf("config: kafka brokers must not be empty")
	}
	if c.HTTPListenAddr == "" {
		return fmt.Errorf("config: http listen address must not be empty")
	}
	return nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
