package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetType distinguishes fiat from cryptocurrency transactions.
type AssetType string

const (
	AssetTypeFiat   AssetType = "FIAT"
	AssetTypeCrypto AssetType = "CRYPTO"
)

// IsValid returns true if the asset type is a known value.
func (a AssetType) IsValid() bool {
	return a == AssetTypeFiat || a == AssetTypeCrypto
}

// CryptoDetails carries crypto-specific evidence, present only on
// CRYPTO transactions. The chain analysis that produces these fields
// happens upstream; screening consumes them as given.
type CryptoDetails struct {
	MixerUsed     bool   `json:"mixer_used"`
	DarknetMarket string `json:"darknet_market,omitempty"`
	WalletAgeDays int    `json:"wallet_age_days"`
}

// Transaction is a single transfer submitted for screening.
type Transaction struct {
	ID                    string          `json:"id" validate:"required"`
	Amount                decimal.Decimal `json:"amount"`
	OriginCountry         string          `json:"origin_country" validate:"required,min=2,max=3"`
	DestinationCountry    string          `json:"destination_country" validate:"required,min=2,max=3"`
	IntermediateCountries []string        `json:"intermediate_countries,omitempty" validate:"dive,min=2,max=3"`
	AssetType             AssetType       `json:"asset_type" validate:"required"`
	CryptoDetails         *CryptoDetails  `json:"crypto_details,omitempty"`
	Parties               []string        `json:"parties,omitempty"`
	Timestamp             time.Time       `json:"timestamp" validate:"required"`
	Documents             []string        `json:"documents,omitempty"`
}

// HistoryEntry is a prior transaction on the customer's account.
type HistoryEntry struct {
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp" validate:"required"`
}

// Customer is the account holder behind a screened transaction.
type Customer struct {
	Name               string         `json:"name" validate:"required"`
	AccountAgeDays     int            `json:"account_age_days" validate:"min=0"`
	TransactionHistory []HistoryEntry `json:"transaction_history,omitempty"`
}
