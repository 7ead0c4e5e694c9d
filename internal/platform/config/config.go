package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr              string
	DatabaseURL       string
	DataEncryptionKey string
	Environment       string
	RunMigrations     bool
	RunSeed           bool
	MigrationsDir     string
	MaxBodyBytes      int64
	PayslipDir        string
	MetricsEnabled    bool
	DefaultPTKPStatus string
	ShutdownTimeout   time.Duration
	DBMaxConns        int
	RateLimitPerMin   int
	JobQueueSize      int
	TrustedProxies    []string
}

func Load() Config {
	return Config{
		Addr:              getEnv("APP_ADDR", ":8080"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		DataEncryptionKey: getEnv("DATA_ENCRYPTION_KEY", ""),
		Environment:       getEnv("APP_ENV", "development"),
		RunMigrations:     getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:           getEnvBool("RUN_SEED", true),
		MigrationsDir:     getEnv("MIGRATIONS_DIR", "migrations"),
		MaxBodyBytes:      int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		PayslipDir:        getEnv("PAYSLIP_DIR", "storage/payslips"),
		MetricsEnabled:    getEnvBool("METRICS_ENABLED", true),
		DefaultPTKPStatus: getEnv("DEFAULT_PTKP_STATUS", "TK/0"),
		ShutdownTimeout:   getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		DBMaxConns:        getEnvInt("DB_MAX_CONNS", 10),
		RateLimitPerMin:   getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		JobQueueSize:      getEnvInt("JOB_QUEUE_SIZE", 256),
		TrustedProxies:    getEnvList("TRUSTED_PROXIES"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" && strings.TrimSpace(c.DataEncryptionKey) == "" {
		return fmt.Errorf("DATA_ENCRYPTION_KEY must be set in production for encryption at rest")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if c.RateLimitPerMin < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	if _, err := c.TrustedProxyPrefixes(); err != nil {
		return err
	}
	return nil
}

// TrustedProxyPrefixes parses TRUSTED_PROXIES entries, each an IP or a CIDR.
func (c Config) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, raw := range c.TrustedProxies {
		if strings.Contains(raw, "/") {
			prefix, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("TRUSTED_PROXIES: invalid range %q", raw)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES: invalid address %q", raw)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}
