package config

import (
	"fmt"
	"time"
)

// Config is the complete screening service configuration. It is loaded
// once at startup, validated, and treated as immutable afterwards; every
// component receives it (or a sub-section) by injection.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Lists       ListsConfig       `mapstructure:"lists"`
	Screening   ScreeningConfig   `mapstructure:"screening"`
	Structuring StructuringConfig `mapstructure:"structuring"`
	Scoring     ScoringConfig     `mapstructure:"scoring"`
	Sanctions   SanctionsConfig   `mapstructure:"sanctions"`
	Annotator   AnnotatorConfig   `mapstructure:"annotator"`
	Review      ReviewConfig      `mapstructure:"review"`
}

// ServerConfig defines HTTP server settings
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig defines logging settings
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// ListsConfig holds the static risk reference lists.
type ListsConfig struct {
	HighRiskCountries  []string `mapstructure:"high_risk_countries"`
	TaxHavens          []string `mapstructure:"tax_havens"`
	SanctionedEntities []string `mapstructure:"sanctioned_entities"`
	DarknetMarkets     []string `mapstructure:"darknet_markets"`
	PEPKeywords        []string `mapstructure:"pep_keywords"`
}

// ScreeningConfig defines routing thresholds for the screening graph.
type ScreeningConfig struct {
	LargeTransactionThreshold float64 `mapstructure:"large_transaction_threshold"`
	NewAccountMaxAgeDays      int     `mapstructure:"new_account_max_age_days"`
	NewWalletMaxAgeDays       int     `mapstructure:"new_wallet_max_age_days"`
}

// StructuringConfig defines the behavioral structuring detection
// parameters. The defaults reproduce the historically tuned values;
// their calibration is a policy decision, which is why they are
// configuration rather than constants.
type StructuringConfig struct {
	Window           time.Duration `mapstructure:"window"`
	MinClusterCount  int           `mapstructure:"min_cluster_count"`
	AmountCeiling    float64       `mapstructure:"amount_ceiling"`
	UniformMinCount  int           `mapstructure:"uniform_min_count"`
	UniformMaxStddev float64       `mapstructure:"uniform_max_stddev"`
}

// ScoringConfig defines the weighted risk scoring policy.
type ScoringConfig struct {
	SanctionHitWeight        int `mapstructure:"sanction_hit_weight"`
	PEPWeight                int `mapstructure:"pep_weight"`
	CryptoFactorWeight       int `mapstructure:"crypto_factor_weight"`
	JurisdictionFactorWeight int `mapstructure:"jurisdiction_factor_weight"`
	DocumentRiskWeight       int `mapstructure:"document_risk_weight"`
	AlertWeight              int `mapstructure:"alert_weight"`
	SARThreshold             int `mapstructure:"sar_threshold"`
	MaxScore                 int `mapstructure:"max_score"`
}

// SanctionsConfig defines sanctions matching behavior.
type SanctionsConfig struct {
	// EnableFuzzyMatching turns on Levenshtein near-match detection.
	// A near match raises an advisory alert but never counts as a hit,
	// so routing stays deterministic regardless of this flag.
	EnableFuzzyMatching bool `mapstructure:"enable_fuzzy_matching"`
	MaxEditDistance     int  `mapstructure:"max_edit_distance"`
}

// AnnotatorConfig bounds the two risk annotator call sites.
type AnnotatorConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxAttempts int           `mapstructure:"max_attempts"`
}

// ReviewConfig defines human review handling.
type ReviewConfig struct {
	Deadline time.Duration `mapstructure:"deadline"`
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Scoring.MaxScore <= 0 {
		return fmt.Errorf("scoring.max_score must be positive, got %d", c.Scoring.MaxScore)
	}
	if c.Scoring.SARThreshold < 0 || c.Scoring.SARThreshold > c.Scoring.MaxScore {
		return fmt.Errorf("scoring.sar_threshold %d outside [0, %d]", c.Scoring.SARThreshold, c.Scoring.MaxScore)
	}
	for name, w := range map[string]int{
		"sanction_hit_weight":        c.Scoring.SanctionHitWeight,
		"pep_weight":                 c.Scoring.PEPWeight,
		"crypto_factor_weight":       c.Scoring.CryptoFactorWeight,
		"jurisdiction_factor_weight": c.Scoring.JurisdictionFactorWeight,
		"document_risk_weight":       c.Scoring.DocumentRiskWeight,
		"alert_weight":               c.Scoring.AlertWeight,
	} {
		if w < 0 {
			return fmt.Errorf("scoring.%s must be non-negative, got %d", name, w)
		}
	}
	if c.Screening.LargeTransactionThreshold < 0 {
		return fmt.Errorf("screening.large_transaction_threshold must be non-negative")
	}
	if c.Structuring.Window <= 0 {
		return fmt.Errorf("structuring.window must be positive")
	}
	if c.Structuring.MinClusterCount < 1 || c.Structuring.UniformMinCount < 2 {
		return fmt.Errorf("structuring sample-size thresholds too small for stable statistics")
	}
	if c.Annotator.MaxAttempts < 1 {
		return fmt.Errorf("annotator.max_attempts must be at least 1, got %d", c.Annotator.MaxAttempts)
	}
	if c.Annotator.Timeout <= 0 {
		return fmt.Errorf("annotator.timeout must be positive")
	}
	if c.Review.Deadline <= 0 {
		return fmt.Errorf("review.deadline must be positive")
	}
	if c.Sanctions.EnableFuzzyMatching && c.Sanctions.MaxEditDistance < 1 {
		return fmt.Errorf("sanctions.max_edit_distance must be at least 1 when fuzzy matching is enabled")
	}
	return nil
}
