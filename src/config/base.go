package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// SettingsSource supplies overrides keyed by lower-case environment name.
// *data.Settings satisfies it.
type SettingsSource interface {
	Get(name string) string
}

// Config is built once at startup and handed to every component.
type Config struct {
	Port        string
	GinMode     string
	CORSOrigins []string
	JWTSecret   string
	RedisURL    string
	MySQLDSN    string
	RateLimit   int
	RateWindow  time.Duration
	LogLevel    string
	LogFormat   string
	TLSCertFile string
	TLSKeyFile  string

	AI       AI
	Search   Search
	Pipeline Pipeline
	Media    Media
	Discord  Discord
}

// LoadDotEnv reads .env from the working directory when present.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// Load resolves every key from, in order: settings, the environment, the
// YAML file named by SENTINEL_CONFIG, then the built-in default.
func Load(settings SettingsSource) (Config, error) {
	file, err := readFile(os.Getenv("SENTINEL_CONFIG"))
	if err != nil {
		return Config{}, err
	}
	s := &source{settings: settings, file: file}

	cfg := Config{
		Port:        s.str("PORT", "5002"),
		GinMode:     s.str("GIN_MODE", "release"),
		CORSOrigins: splitList(s.str("CORS_ORIGINS", "*")),
		JWTSecret:   s.str("API_JWT_SECRET", ""),
		RedisURL:    s.str("REDIS_URL", ""),
		MySQLDSN:    s.str("MYSQL_DSN", ""),
		RateLimit:   s.integer("RATE_LIMIT", 30),
		RateWindow:  s.duration("RATE_WINDOW", time.Minute),
		LogLevel:    s.str("LOG_LEVEL", "info"),
		LogFormat:   s.str("LOG_FORMAT", "json"),
		TLSCertFile: s.str("TLS_CERT_FILE", ""),
		TLSKeyFile:  s.str("TLS_KEY_FILE", ""),
		AI:          loadAI(s),
		Search:      loadSearch(s),
		Pipeline:    loadPipeline(s),
		Media:       loadMedia(s),
		Discord:     loadDiscord(s),
	}
	if s.err != nil {
		return Config{}, s.err
	}
	return cfg, nil
}

// TLSEnabled reports whether both certificate files are configured.
func (c Config) TLSEnabled() bool { return c.TLSCertFile != "" && c.TLSKeyFile != "" }

// Validate rejects values no component can work with.
func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port is empty"))
	}
	if c.RateLimit <= 0 {
		errs = append(errs, fmt.Errorf("rate_limit must be positive, got %d", c.RateLimit))
	}
	if c.RateWindow <= 0 {
		errs = append(errs, fmt.Errorf("rate_window must be positive, got %s", c.RateWindow))
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("unknown log_format %q", c.LogFormat))
	}
	if c.AI.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("ai_max_tokens must be positive, got %d", c.AI.MaxTokens))
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		errs = append(errs, fmt.Errorf("ai_temperature out of range: %v", c.AI.Temperature))
	}
	if c.Search.Results <= 0 || c.Search.EvidenceLimit <= 0 {
		errs = append(errs, errors.New("search_results and evidence_limit must be positive"))
	}
	if c.Pipeline.CallTimeout <= 0 {
		errs = append(errs, errors.New("call_timeout must be positive"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

type source struct {
	settings SettingsSource
	file     map[string]string
	err      error
}

func (s *source) lookup(key string) (string, bool) {
	name := strings.ToLower(key)
	if s.settings != nil {
		if v := strings.TrimSpace(s.settings.Get(name)); v != "" {
			return v, true
		}
	}
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), true
	}
	if v, ok := s.file[name]; ok && v != "" {
		return v, true
	}
	return "", false
}

func (s *source) str(key, def string) string {
	if v, ok := s.lookup(key); ok {
		return v
	}
	return def
}

func (s *source) integer(key string, def int) int {
	v, ok := s.lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		s.fail(key, v, err)
		return def
	}
	return n
}

func (s *source) float(key string, def float64) float64 {
	v, ok := s.lookup(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		s.fail(key, v, err)
		return def
	}
	return f
}

func (s *source) boolean(key string, def bool) bool {
	v, ok := s.lookup(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		s.fail(key, v, err)
		return def
	}
	return b
}

func (s *source) duration(key string, def time.Duration) time.Duration {
	v, ok := s.lookup(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		// bare integers are seconds
		n, nerr := strconv.Atoi(v)
		if nerr != nil {
			s.fail(key, v, err)
			return def
		}
		d = time.Duration(n) * time.Second
	}
	return d
}

func (s *source) fail(key, val string, err error) {
	if s.err == nil {
		s.err = fmt.Errorf("config: %s=%q: %w", key, val, err)
	}
}

// readFile flattens a YAML document into lower-case keys joined by "_",
// so "ai: {provider: groq}" becomes "ai_provider".
func readFile(path string) (map[string]string, error) {
	out := map[string]string{}
	if strings.TrimSpace(path) == "" {
		return out, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	flatten("", doc, out)
	return out, nil
}

func flatten(prefix string, in map[string]any, out map[string]string) {
	for k, v := range in {
		key := strings.ToLower(k)
		if prefix != "" {
			key = prefix + "_" + key
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case []any:
			parts := make([]string, 0, len(val))
			for _, item := range val {
				parts = append(parts, fmt.Sprint(item))
			}
			out[key] = strings.Join(parts, ",")
		case nil:
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
