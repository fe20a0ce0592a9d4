package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
)

// Config aggregates application configuration. Values come from environment
// variables, falling back to the YAML file named by HEALTHTRACK_CONFIG and
// then to built-in defaults.
type Config struct {
	Env                string
	HTTPAddr           string
	StoreDriver        string
	SQLitePath         string
	MongoURI           string
	MongoDB            string
	SessionTTL         time.Duration
	BcryptCost         int
	IdempotencyTTL     time.Duration
	KafkaBrokers       []string
	KafkaTopicPrefix   string
	KafkaGroupID       string
	OutboxPollInterval time.Duration
	RetryBackoff       []time.Duration
	S3Endpoint         string
	S3PublicEndpoint   string
	S3AccessKey        string
	S3SecretKey        string
	S3Bucket           string
	S3UseSSL           bool
}

// DevMode reports whether human-oriented logging should be used.
func (c Config) DevMode() bool {
	switch strings.ToLower(c.Env) {
	case "dev", "local":
		return true
	}
	return false
}

func (c Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func (c Config) S3Enabled() bool {
	return c.S3Endpoint != "" && c.S3Bucket != ""
}

// Load parses configuration from the current environment.
func Load() (Config, error) {
	src := source{}
	if path := os.Getenv("HEALTHTRACK_CONFIG"); path != "" {
		file, err := readFile(path)
		if err != nil {
			return Config{}, err
		}
		src.file = file
	}
	return src.load()
}

type source struct {
	file map[string]string
}

func (s source) load() (Config, error) {
	cfg := Config{
		Env:              s.getEnv("APP_ENV", "dev"),
		HTTPAddr:         s.getEnv("HTTP_ADDR", ":8080"),
		StoreDriver:      strings.ToLower(s.getEnv("STORE_DRIVER", StoreSQLite)),
		SQLitePath:       s.getEnv("SQLITE_PATH", "data/healthtrack.db"),
		MongoURI:         s.getEnv("MONGO_URI", ""),
		MongoDB:          s.getEnv("MONGO_DB", "healthtrack"),
		KafkaTopicPrefix: s.getEnv("KAFKA_TOPIC_PREFIX", "healthtrack."),
		KafkaGroupID:     s.getEnv("KAFKA_GROUP_ID", "healthtrack-events"),
		S3Endpoint:       s.getEnv("S3_ENDPOINT", ""),
		S3PublicEndpoint: s.getEnv("S3_PUBLIC_ENDPOINT", ""),
		S3AccessKey:      s.getEnv("S3_ACCESS_KEY", "minioadmin"),
		S3SecretKey:      s.getEnv("S3_SECRET_KEY", "minioadmin"),
		S3Bucket:         s.getEnv("S3_BUCKET", "healthtrack-exports"),
	}
	for _, raw := range strings.Split(s.getEnv("KAFKA_BROKERS", ""), ",") {
		if broker := strings.TrimSpace(raw); broker != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
		}
	}

	var err error
	if cfg.SessionTTL, err = s.parseDurationEnv("SESSION_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = s.parseDurationEnv("IDEMP_TTL", 168*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.OutboxPollInterval, err = s.parseDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.BcryptCost, err = s.parseIntEnv("BCRYPT_COST", 10); err != nil {
		return Config{}, err
	}
	if cfg.S3UseSSL, err = s.parseBoolEnv("S3_USE_SSL", false); err != nil {
		return Config{}, err
	}

	for _, raw := range strings.Split(s.getEnv("RETRY_BACKOFF", "1s,5s,30s"), ",") {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		d, err := time.ParseDuration(val)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RETRY_BACKOFF component %q: %w", raw, err)
		}
		cfg.RetryBackoff = append(cfg.RetryBackoff, d)
	}
	if cfg.S3PublicEndpoint == "" {
		cfg.S3PublicEndpoint = cfg.S3Endpoint
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	switch c.StoreDriver {
	case StoreMemory:
	case StoreSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite store"))
		}
	case StoreMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the mongo store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost))
	}
	return errors.Join(errs...)
}

// readFile loads a flat YAML mapping. Keys are the environment variable
// names in any case; list values are joined with commas.
func readFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		key := strings.ToUpper(strings.TrimSpace(k))
		switch val := v.(type) {
		case nil:
		case []any:
			parts := make([]string, 0, len(val))
			for _, item := range val {
				parts = append(parts, fmt.Sprint(item))
			}
			out[key] = strings.Join(parts, ",")
		case map[string]any:
			return nil, fmt.Errorf("config: %s: nested value for %q is not supported", path, k)
		default:
			out[key] = fmt.Sprint(val)
		}
	}
	return out, nil
}

func (s source) getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if v, ok := s.file[key]; ok && v != "" {
		return v
	}
	return def
}

func (s source) parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := s.getEnv(key, "")
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func (s source) parseIntEnv(key string, def int) (int, error) {
	raw := s.getEnv(key, "")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s integer: %q", key, raw)
	}
	return n, nil
}

func (s source) parseBoolEnv(key string, def bool) (bool, error) {
	raw := s.getEnv(key, "")
	if raw == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}
