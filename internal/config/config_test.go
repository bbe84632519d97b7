package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 0.15, cfg.Consensus.AgreementCVThreshold)
	assert.Equal(t, 2.0, cfg.Yield.OutlierZScore)
	assert.Equal(t, 0.6, cfg.Yield.ConfidenceThreshold)
	assert.Equal(t, 3, cfg.Yield.MinCalibrationSamples)
	assert.Equal(t, 20.0, cfg.Label.QAKcalTolerance)
	assert.Equal(t, 0.35, cfg.Label.QARelativeTolerance)
	assert.Equal(t, 0.15, cfg.Label.AtwaterTolerance)
	assert.Equal(t, 0.00011, cfg.Repair.TraceThreshold)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
consensus:
  agreement_cv_threshold: 0.2
yield:
  confidence_threshold: 0.75
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(dir+"/config.yaml", []byte(yaml), 0644))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.2, cfg.Consensus.AgreementCVThreshold)
	assert.Equal(t, 0.75, cfg.Yield.ConfidenceThreshold)
	// Untouched keys keep defaults.
	assert.Equal(t, 2.0, cfg.Yield.OutlierZScore)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.Error(t, InitLogger(LogConfig{Level: "shouting", Format: "json"}))
}
