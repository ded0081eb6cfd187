package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	defaultBroker = "localhost:9092"
	testWindPath  = "testdata/wind.data"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("WIND_DATA_PATH", testWindPath)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.ImagePath)
	assert.Equal(t, testWindPath, cfg.WindDataPath)
	assert.Empty(t, cfg.OutputDir)
	assert.Equal(t, "json", cfg.ReportFormat)
	assert.Equal(t, []int{1, 50}, cfg.SmoothPasses)
	assert.Equal(t, 64, cfg.RefilterCacheSize)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "stencil-lab-reports", cfg.KafkaReportTopic)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.False(t, cfg.Serve)
	assert.Empty(t, cfg.RunSchedule)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("IMAGE_PATH", "dc_metro.png")
	t.Setenv("WIND_DATA_PATH", testWindPath)
	t.Setenv("OUTPUT_DIR", "out")
	t.Setenv("REPORT_FORMAT", "YAML")
	t.Setenv("SMOOTH_PASSES", "220, 50,1,50")
	t.Setenv("REFILTER_CACHE_SIZE", "8")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_REPORT_TOPIC", "custom-reports")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("SERVE", "true")
	t.Setenv("RUN_SCHEDULE", "@hourly")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dc_metro.png", cfg.ImagePath)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, "yaml", cfg.ReportFormat)
	assert.Equal(t, []int{1, 50, 220}, cfg.SmoothPasses)
	assert.Equal(t, 8, cfg.RefilterCacheSize)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-reports", cfg.KafkaReportTopic)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.True(t, cfg.Serve)
	assert.Equal(t, "@hourly", cfg.RunSchedule)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_RequiresAnInput(t *testing.T) {
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IMAGE_PATH")
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("WIND_DATA_PATH", testWindPath)
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidSmoothPasses(t *testing.T) {
	t.Setenv("WIND_DATA_PATH", testWindPath)

	for _, v := range []string{"abc", "1,-2", " , "} {
		t.Setenv("SMOOTH_PASSES", v)
		_, err := Load()
		require.Error(t, err, v)
		assert.Contains(t, err.Error(), "SMOOTH_PASSES")
	}
}

func TestLoad_InvalidCacheSize(t *testing.T) {
	t.Setenv("WIND_DATA_PATH", testWindPath)
	t.Setenv("REFILTER_CACHE_SIZE", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REFILTER_CACHE_SIZE")
}

func TestLoad_InvalidReportFormat(t *testing.T) {
	t.Setenv("WIND_DATA_PATH", testWindPath)
	t.Setenv("REPORT_FORMAT", "xml")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REPORT_FORMAT")
}

func TestLoad_ScheduleRequiresServe(t *testing.T) {
	t.Setenv("WIND_DATA_PATH", testWindPath)
	t.Setenv("RUN_SCHEDULE", "@daily")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVE")
}

func TestLoad_InvalidSchedule(t *testing.T) {
	t.Setenv("WIND_DATA_PATH", testWindPath)
	t.Setenv("SERVE", "true")
	t.Setenv("RUN_SCHEDULE", "every tuesday")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RUN_SCHEDULE")
}
