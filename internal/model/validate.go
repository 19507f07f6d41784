package model

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationError marks a malformed Transaction or Customer. Runs
// rejected with it never enter the screening graph.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

// Validate rejects malformed transactions before screening starts.
func (t *Transaction) Validate() error {
	if err := validate.Struct(t); err != nil {
		return firstViolation(err)
	}
	if t.Amount.IsNegative() {
		return &ValidationError{Field: "amount", Reason: "must be non-negative"}
	}
	if !t.AssetType.IsValid() {
		return &ValidationError{Field: "asset_type", Reason: fmt.Sprintf("unknown asset type %q", t.AssetType)}
	}
	if t.AssetType == AssetTypeCrypto && t.CryptoDetails == nil {
		return &ValidationError{Field: "crypto_details", Reason: "required for CRYPTO transactions"}
	}
	if t.AssetType == AssetTypeFiat && t.CryptoDetails != nil {
		return &ValidationError{Field: "crypto_details", Reason: "must be absent for FIAT transactions"}
	}
	if t.CryptoDetails != nil && t.CryptoDetails.WalletAgeDays < 0 {
		return &ValidationError{Field: "crypto_details.wallet_age_days", Reason: "must be non-negative"}
	}
	for _, p := range t.Parties {
		if p == "" {
			return &ValidationError{Field: "parties", Reason: "party names must be non-empty"}
		}
	}
	return nil
}

// Validate rejects malformed customer records before screening starts.
func (c *Customer) Validate() error {
	if err := validate.Struct(c); err != nil {
		return firstViolation(err)
	}
	for i, entry := range c.TransactionHistory {
		if entry.Amount.IsNegative() {
			return &ValidationError{
				Field:  fmt.Sprintf("transaction_history[%d].amount", i),
				Reason: "must be non-negative",
			}
		}
		if entry.Timestamp.IsZero() {
			return &ValidationError{
				Field:  fmt.Sprintf("transaction_history[%d].timestamp", i),
				Reason: "required",
			}
		}
	}
	return nil
}

func firstViolation(err error) error {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		return &ValidationError{
			Field:  verrs[0].Namespace(),
			Reason: fmt.Sprintf("failed %q constraint", verrs[0].Tag()),
		}
	}
	return err
}
