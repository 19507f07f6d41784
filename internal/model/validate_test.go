package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTransaction() *Transaction {
	return &Transaction{
		ID:                 "TX-1",
		Amount:             decimal.NewFromInt(5000),
		OriginCountry:      "US",
		DestinationCountry: "GB",
		AssetType:          AssetTypeFiat,
		Parties:            []string{"Acme Imports"},
		Timestamp:          time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
	}
}

func TestTransactionValidate(t *testing.T) {
	t.Run("valid_fiat", func(t *testing.T) {
		assert.NoError(t, validTransaction().Validate())
	})

	t.Run("valid_crypto", func(t *testing.T) {
		tx := validTransaction()
		tx.AssetType = AssetTypeCrypto
		tx.CryptoDetails = &CryptoDetails{WalletAgeDays: 30}
		assert.NoError(t, tx.Validate())
	})

	cases := map[string]struct {
		corrupt func(*Transaction)
		field   string
	}{
		"missing_id": {
			corrupt: func(tx *Transaction) { tx.ID = "" },
			field:   "Transaction.ID",
		},
		"missing_origin": {
			corrupt: func(tx *Transaction) { tx.OriginCountry = "" },
			field:   "Transaction.OriginCountry",
		},
		"origin_too_long": {
			corrupt: func(tx *Transaction) { tx.OriginCountry = "USAX" },
			field:   "Transaction.OriginCountry",
		},
		"missing_timestamp": {
			corrupt: func(tx *Transaction) { tx.Timestamp = time.Time{} },
			field:   "Transaction.Timestamp",
		},
		"negative_amount": {
			corrupt: func(tx *Transaction) { tx.Amount = decimal.NewFromInt(-100) },
			field:   "amount",
		},
		"unknown_asset_type": {
			corrupt: func(tx *Transaction) { tx.AssetType = "COMMODITY" },
			field:   "asset_type",
		},
		"crypto_without_details": {
			corrupt: func(tx *Transaction) { tx.AssetType = AssetTypeCrypto },
			field:   "crypto_details",
		},
		"fiat_with_details": {
			corrupt: func(tx *Transaction) { tx.CryptoDetails = &CryptoDetails{} },
			field:   "crypto_details",
		},
		"negative_wallet_age": {
			corrupt: func(tx *Transaction) {
				tx.AssetType = AssetTypeCrypto
				tx.CryptoDetails = &CryptoDetails{WalletAgeDays: -1}
			},
			field: "crypto_details.wallet_age_days",
		},
		"empty_party_name": {
			corrupt: func(tx *Transaction) { tx.Parties = []string{"Acme", ""} },
			field:   "parties",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			tx := validTransaction()
			tc.corrupt(tx)
			err := tx.Validate()
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestCustomerValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		customer := &Customer{Name: "Jane Doe", AccountAgeDays: 90}
		assert.NoError(t, customer.Validate())
	})

	t.Run("missing_name", func(t *testing.T) {
		customer := &Customer{AccountAgeDays: 90}
		var verr *ValidationError
		require.ErrorAs(t, customer.Validate(), &verr)
		assert.Equal(t, "Customer.Name", verr.Field)
	})

	t.Run("negative_account_age", func(t *testing.T) {
		customer := &Customer{Name: "Jane Doe", AccountAgeDays: -1}
		assert.Error(t, customer.Validate())
	})

	t.Run("negative_history_amount", func(t *testing.T) {
		customer := &Customer{
			Name: "Jane Doe",
			TransactionHistory: []HistoryEntry{
				{Amount: decimal.NewFromInt(-50), Timestamp: time.Now()},
			},
		}
		var verr *ValidationError
		require.ErrorAs(t, customer.Validate(), &verr)
		assert.Equal(t, "transaction_history[0].amount", verr.Field)
	})
}
