package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, SourceParquet, cfg.Source)
	assert.Equal(t, "processed_data/customer_wise.parquet", cfg.Parquet.CustomerPath)
	assert.Equal(t, "processed_data/segment_wise.parquet", cfg.Parquet.SegmentPath)
	assert.Equal(t, []int{2009, 2010}, cfg.Periods.EarlyYears)
	assert.Equal(t, "2009-10", cfg.Periods.EarlyLabel)
	assert.Equal(t, "2011-12", cfg.Periods.LateLabel)
	assert.Equal(t, 5, cfg.TopN)
	assert.False(t, cfg.Interactive)
	assert.Equal(t, 0, cfg.HistogramBins)
}

func TestLoad_HistogramBins(t *testing.T) {
	t.Setenv("CLV_HISTOGRAM_BINS", "12")
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.HistogramBins)

	fs := Flags()
	require.NoError(t, fs.Parse([]string{"--histogram-bins", "6"}))
	cfg, err = Load(fs)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.HistogramBins)

	t.Setenv("CLV_HISTOGRAM_BINS", "-1")
	_, err = Load(nil)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CLV_SOURCE", "mysql")
	t.Setenv("CLV_DSN", "mysql://u:p@db:3306/clv")
	t.Setenv("CLV_TOP_N", "3")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, SourceMySQL, cfg.Source)
	assert.Equal(t, "mysql://u:p@db:3306/clv", cfg.MySQL.DSN)
	assert.Equal(t, "customer_wise", cfg.MySQL.CustomerTable)
	assert.Equal(t, 3, cfg.TopN)
}

func TestLoad_FlagsWinOverEnv(t *testing.T) {
	t.Setenv("CLV_PARQUET_CUSTOMER_PATH", "/env/customers.parquet")

	fs := Flags()
	require.NoError(t, fs.Parse([]string{"--customer-path", "/flag/customers.parquet", "-i"}))

	cfg, err := Load(fs)
	require.NoError(t, err)

	assert.Equal(t, "/flag/customers.parquet", cfg.Parquet.CustomerPath)
	assert.True(t, cfg.Interactive)
	// unset flags do not mask defaults
	assert.Equal(t, 5, cfg.TopN)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clv.yaml")
	body := []byte(`
source: parquet
parquet:
  customer_path: /data/c.parquet
  segment_path: /data/s.parquet
periods:
  early_years: [2019, 2020]
  early_label: "2019-20"
  late_label: "2021-22"
top_n: 10
`)
	require.NoError(t, os.WriteFile(path, body, 0o600))

	fs := Flags()
	require.NoError(t, fs.Parse([]string{"--config", path}))

	cfg, err := Load(fs)
	require.NoError(t, err)

	assert.Equal(t, "/data/c.parquet", cfg.Parquet.CustomerPath)
	assert.Equal(t, []int{2019, 2020}, cfg.Periods.EarlyYears)
	assert.Equal(t, "2021-22", cfg.Periods.LateLabel)
	assert.Equal(t, 10, cfg.TopN)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	fs := Flags()
	require.NoError(t, fs.Parse([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")}))

	_, err := Load(fs)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Source:  SourceParquet,
			Parquet: ParquetConfig{CustomerPath: "c", SegmentPath: "s"},
			Periods: PeriodsConfig{EarlyYears: []int{2009}, EarlyLabel: "a", LateLabel: "b"},
			TopN:    5,
		}
	}

	cfg := valid()
	assert.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.Source = "csv"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Source = SourceMySQL
	assert.Error(t, cfg.Validate(), "mysql without dsn")

	cfg = valid()
	cfg.TopN = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.HistogramBins = -3
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Periods.EarlyYears = nil
	assert.Error(t, cfg.Validate())
}
