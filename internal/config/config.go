// Package config loads Fraud Graph Engine configuration from the environment
// and config files.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Environment string        `mapstructure:"environment"`
	Server      ServerConfig  `mapstructure:"server"`
	Detection   DetectionConfig `mapstructure:"detection"`
	Kafka       KafkaConfig   `mapstructure:"kafka"`
	Logging     LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration for the service host.
type ServerConfig struct {
	HTTPPort     int `mapstructure:"http_port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
	IdleTimeout  int `mapstructure:"idle_timeout"`
}

// DetectionConfig mirrors the configuration surface in spec.md §6: every
// tunable the detectors read, plus the derived caps from §4.9 and §5.
type DetectionConfig struct {
	CycleMaxLength         int      `mapstructure:"cycle_max_length"`
	CycleBasePoints        int      `mapstructure:"cycle_base_points"`
	LayerMinDepth          int      `mapstructure:"layer_min_depth"`
	LayerPoints            int      `mapstructure:"layer_points"`
	SmurfMinUniqueAccounts int      `mapstructure:"smurf_min_unique_accounts"`
	SmurfMaxAmount         float64  `mapstructure:"smurf_max_amount"`
	SmurfPoints            int      `mapstructure:"smurf_points"`
	SmurfStdDevTolerance   float64  `mapstructure:"smurf_std_dev_tolerance"`
	HighRiskCountries      []string `mapstructure:"high_risk_countries"`
	GeoRiskPoints          int      `mapstructure:"geo_risk_points"`
	FreezeThresholdScore   int      `mapstructure:"freeze_threshold_score"`
	ShadowBossPoints       int      `mapstructure:"shadow_boss_points"`
	ShadowBossPercentile   int      `mapstructure:"shadow_boss_percentile"`
	MaxNodesToRender       int      `mapstructure:"max_nodes_to_render"`
	HistoryCap             int      `mapstructure:"history_cap"`
	RingCap                int      `mapstructure:"ring_cap"`
}

// KafkaConfig holds configuration for the post-analysis event publisher.
type KafkaConfig struct {
	Enabled                bool   `mapstructure:"enabled"`
	Brokers                string `mapstructure:"brokers"`
	AnalysisCompletedTopic string `mapstructure:"analysis_completed_topic"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from environment variables and config files,
// falling back to the spec.md §6 defaults for anything unset.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("/etc/fraud-graph-engine")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvPrefix("FRAUD_ENGINE")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("environment", "development")

	viper.SetDefault("server.http_port", 8090)
	viper.SetDefault("server.read_timeout", 30)
	viper.SetDefault("server.write_timeout", 30)
	viper.SetDefault("server.idle_timeout", 120)

	viper.SetDefault("detection.cycle_max_length", 6)
	viper.SetDefault("detection.cycle_base_points", 10)
	viper.SetDefault("detection.layer_min_depth", 3)
	viper.SetDefault("detection.layer_points", 15)
	viper.SetDefault("detection.smurf_min_unique_accounts", 15)
	viper.SetDefault("detection.smurf_max_amount", 3000.0)
	viper.SetDefault("detection.smurf_points", 20)
	viper.SetDefault("detection.smurf_std_dev_tolerance", 0.15)
	viper.SetDefault("detection.high_risk_countries", []string{"KY", "KP", "RU", "PA", "SY", "IR"})
	viper.SetDefault("detection.geo_risk_points", 15)
	viper.SetDefault("detection.freeze_threshold_score", 20)
	viper.SetDefault("detection.shadow_boss_points", 30)
	viper.SetDefault("detection.shadow_boss_percentile", 33)
	viper.SetDefault("detection.max_nodes_to_render", 800)
	viper.SetDefault("detection.history_cap", 50)
	viper.SetDefault("detection.ring_cap", 25)

	viper.SetDefault("kafka.enabled", false)
	viper.SetDefault("kafka.brokers", "localhost:9092")
	viper.SetDefault("kafka.analysis_completed_topic", "fraud.analysis.completed")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

func validateConfig(cfg *Config) error {
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", cfg.Server.HTTPPort)
	}

	d := cfg.Detection
	if d.CycleMaxLength <= 0 {
		return fmt.Errorf("cycle_max_length must be positive")
	}
	if d.LayerMinDepth <= 0 {
		return fmt.Errorf("layer_min_depth must be positive")
	}
	if d.SmurfMinUniqueAccounts <= 0 {
		return fmt.Errorf("smurf_min_unique_accounts must be positive")
	}
	if d.SmurfMaxAmount <= 0 {
		return fmt.Errorf("smurf_max_amount must be positive")
	}
	if d.SmurfStdDevTolerance <= 0 {
		return fmt.Errorf("smurf_std_dev_tolerance must be positive")
	}
	if len(d.HighRiskCountries) == 0 {
		return fmt.Errorf("high_risk_countries must not be empty")
	}
	if d.MaxNodesToRender <= 0 {
		return fmt.Errorf("max_nodes_to_render must be positive")
	}
	if d.HistoryCap <= 0 {
		return fmt.Errorf("history_cap must be positive")
	}
	if d.RingCap <= 0 {
		return fmt.Errorf("ring_cap must be positive")
	}

	return nil
}

// Default returns the DetectionConfig populated with spec.md §6 defaults,
// for callers (tests, library users) that build an engine without going
// through Load.
func Default() DetectionConfig {
	return DetectionConfig{
		CycleMaxLength:         6,
		CycleBasePoints:        10,
		LayerMinDepth:          3,
		LayerPoints:            15,
		SmurfMinUniqueAccounts: 15,
		SmurfMaxAmount:         3000.0,
		SmurfPoints:            20,
		SmurfStdDevTolerance:   0.15,
		HighRiskCountries:      []string{"KY", "KP", "RU", "PA", "SY", "IR"},
		GeoRiskPoints:          15,
		FreezeThresholdScore:   20,
		ShadowBossPoints:       30,
		ShadowBossPercentile:   33,
		MaxNodesToRender:       800,
		HistoryCap:             50,
		RingCap:                25,
	}
}
