package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load reads configuration from the given YAML files (missing files are
// skipped) and AMLGUARD_-prefixed environment variables, applies
// defaults, and validates the result.
func Load(configPaths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("AMLGUARD")

	setDefaults(v)

	if len(configPaths) == 0 {
		configPaths = []string{
			"./config/amlguard.yaml",
			"/etc/amlguard/amlguard.yaml",
		}
	}
	for _, path := range configPaths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns the built-in configuration without touching the
// filesystem or environment. Tests and the batch runner use it.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Defaults are static; unmarshal cannot fail on them.
		panic(fmt.Sprintf("default config unmarshal: %v", err))
	}
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8084")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("logging.level", "info")

	v.SetDefault("lists.high_risk_countries", []string{"IR", "KP", "SY", "CU", "MM", "RU"})
	v.SetDefault("lists.tax_havens", []string{"KY", "VG", "BM", "PA", "MT", "AE"})
	v.SetDefault("lists.sanctioned_entities", []string{
		"narcotics_cartel_xyz", "terror_group_abc", "sanctioned_russian_bank",
	})
	v.SetDefault("lists.darknet_markets", []string{"AlphaMarket", "Dark0d3", "Hydra"})
	v.SetDefault("lists.pep_keywords", []string{"gov", "minister", "official"})

	v.SetDefault("screening.large_transaction_threshold", 100000.0)
	v.SetDefault("screening.new_account_max_age_days", 7)
	v.SetDefault("screening.new_wallet_max_age_days", 7)

	v.SetDefault("structuring.window", 24*time.Hour)
	v.SetDefault("structuring.min_cluster_count", 3)
	v.SetDefault("structuring.amount_ceiling", 10000.0)
	v.SetDefault("structuring.uniform_min_count", 5)
	v.SetDefault("structuring.uniform_max_stddev", 500.0)

	v.SetDefault("scoring.sanction_hit_weight", 40)
	v.SetDefault("scoring.pep_weight", 35)
	v.SetDefault("scoring.crypto_factor_weight", 25)
	v.SetDefault("scoring.jurisdiction_factor_weight", 20)
	v.SetDefault("scoring.document_risk_weight", 15)
	v.SetDefault("scoring.alert_weight", 10)
	v.SetDefault("scoring.sar_threshold", 65)
	v.SetDefault("scoring.max_score", 100)

	v.SetDefault("sanctions.enable_fuzzy_matching", false)
	v.SetDefault("sanctions.max_edit_distance", 2)

	v.SetDefault("annotator.timeout", 5*time.Second)
	v.SetDefault("annotator.max_attempts", 2)

	v.SetDefault("review.deadline", 24*time.Hour)
}
