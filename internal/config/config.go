package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/robfig/cron/v3"
)

// Config holds all exercise settings, populated from environment variables.
type Config struct {
	ImagePath    string
	WindDataPath string
	OutputDir    string
	ReportFormat string

	// SmoothPasses lists the refilter iteration counts run against the image.
	SmoothPasses      []int
	RefilterCacheSize int

	KafkaEnabled     bool
	KafkaBrokers     []string
	KafkaReportTopic string

	HTTPAddr        string
	Serve           bool
	RunSchedule     string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	passes, err := parseSmoothPasses(sharedcfg.EnvOrDefault("SMOOTH_PASSES", "1,50"))
	if err != nil {
		return nil, err
	}

	cacheSize, err := parsePositiveInt("REFILTER_CACHE_SIZE", 64)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ImagePath:         os.Getenv("IMAGE_PATH"),
		WindDataPath:      os.Getenv("WIND_DATA_PATH"),
		OutputDir:         os.Getenv("OUTPUT_DIR"),
		ReportFormat:      strings.ToLower(sharedcfg.EnvOrDefault("REPORT_FORMAT", "json")),
		SmoothPasses:      passes,
		RefilterCacheSize: cacheSize,
		KafkaEnabled:      os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:      sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaReportTopic:  sharedcfg.EnvOrDefault("KAFKA_REPORT_TOPIC", "stencil-lab-reports"),
		HTTPAddr:          sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		Serve:             os.Getenv("SERVE") == "true",
		RunSchedule:       os.Getenv("RUN_SCHEDULE"),
		LogLevel:          sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:         sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:   shutdownTimeout,
	}

	if cfg.ImagePath == "" && cfg.WindDataPath == "" {
		return nil, errors.New("at least one of IMAGE_PATH or WIND_DATA_PATH is required")
	}
	if cfg.ReportFormat != "json" && cfg.ReportFormat != "yaml" {
		return nil, fmt.Errorf("invalid REPORT_FORMAT %q: want json or yaml", cfg.ReportFormat)
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if cfg.KafkaReportTopic == "" {
			return nil, errors.New("KAFKA_REPORT_TOPIC is required")
		}
	}
	if cfg.RunSchedule != "" && !cfg.Serve {
		return nil, errors.New("RUN_SCHEDULE requires SERVE=true")
	}
	if cfg.RunSchedule != "" {
		if _, err := cron.ParseStandard(cfg.RunSchedule); err != nil {
			return nil, fmt.Errorf("invalid RUN_SCHEDULE %q: %w", cfg.RunSchedule, err)
		}
	}

	return cfg, nil
}

// parseSmoothPasses parses a comma-separated list of non-negative iteration
// counts, returned sorted and de-duplicated.
func parseSmoothPasses(s string) ([]int, error) {
	seen := make(map[int]bool)
	var passes []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid SMOOTH_PASSES entry %q", part)
		}
		if !seen[n] {
			seen[n] = true
			passes = append(passes, n)
		}
	}
	if len(passes) == 0 {
		return nil, errors.New("SMOOTH_PASSES must list at least one iteration count")
	}
	sort.Ints(passes)
	return passes, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return n, nil
}
