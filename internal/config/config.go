package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Consensus ConsensusConfig `yaml:"consensus" mapstructure:"consensus"`
	Yield     YieldConfig     `yaml:"yield" mapstructure:"yield"`
	Label     LabelConfig     `yaml:"label" mapstructure:"label"`
	Repair    RepairConfig    `yaml:"repair" mapstructure:"repair"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ConsensusConfig holds the consensus resolver thresholds. The agreement
// threshold is the coefficient of variation above which sources are treated
// as divergent; it is carried as configuration because the production value
// (0.15) is an operating constant, not a derived one.
type ConsensusConfig struct {
	AgreementCVThreshold float64 `yaml:"agreement_cv_threshold" mapstructure:"agreement_cv_threshold"`
}

// YieldConfig holds the yield calibration thresholds.
type YieldConfig struct {
	OutlierZScore        float64 `yaml:"outlier_z_score" mapstructure:"outlier_z_score"`
	ConfidenceThreshold  float64 `yaml:"confidence_threshold" mapstructure:"confidence_threshold"`
	MinCalibrationSamples int    `yaml:"min_calibration_samples" mapstructure:"min_calibration_samples"`
	DefaultYieldPct      float64 `yaml:"default_yield_pct" mapstructure:"default_yield_pct"`
}

// LabelConfig holds label QA tolerances.
type LabelConfig struct {
	QAKcalTolerance    float64 `yaml:"qa_kcal_tolerance" mapstructure:"qa_kcal_tolerance"`
	QARelativeTolerance float64 `yaml:"qa_relative_tolerance" mapstructure:"qa_relative_tolerance"`
	AtwaterTolerance   float64 `yaml:"atwater_tolerance" mapstructure:"atwater_tolerance"`
	CreatedBy          string  `yaml:"created_by" mapstructure:"created_by"`
}

// RepairConfig configures the trace-value repair sweep.
type RepairConfig struct {
	TraceThreshold float64 `yaml:"trace_threshold" mapstructure:"trace_threshold"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LABELCLI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "label.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("consensus.agreement_cv_threshold", 0.15)
	v.SetDefault("yield.outlier_z_score", 2.0)
	v.SetDefault("yield.confidence_threshold", 0.6)
	v.SetDefault("yield.min_calibration_samples", 3)
	v.SetDefault("yield.default_yield_pct", 100.0)
	v.SetDefault("label.qa_kcal_tolerance", 20.0)
	v.SetDefault("label.qa_relative_tolerance", 0.35)
	v.SetDefault("label.atwater_tolerance", 0.15)
	v.SetDefault("label.created_by", "label-cli")
	v.SetDefault("repair.trace_threshold", 0.00011)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
