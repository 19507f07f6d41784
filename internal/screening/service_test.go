package screening

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Aidin1998/amlguard/internal/casestore"
	"github.com/Aidin1998/amlguard/internal/config"
	"github.com/Aidin1998/amlguard/internal/model"
)

func newTestService(t *testing.T, store casestore.Store) *Service {
	t.Helper()
	svc, err := NewService(config.Default(), &stubAnnotator{}, store, nil, zap.NewNop())
	require.NoError(t, err)
	svc.Stages().
		WithClock(func() time.Time { return baseTime }).
		WithCaseIDFunc(func() string { return "CASE-TEST" })
	return svc
}

func TestServiceScreenPersistsCase(t *testing.T) {
	store := casestore.NewMemoryStore()
	svc := newTestService(t, store)

	tx := fiatTransaction()
	tx.Parties = []string{"Sanctioned_Russian_Bank"}
	terminal, err := svc.Screen(context.Background(), tx, standardCustomer())
	require.NoError(t, err)
	assert.Equal(t, StatusSARFiled, terminal.ReportingStatus)

	record, err := store.Get(context.Background(), "CASE-TEST")
	require.NoError(t, err)
	assert.Equal(t, "TX-1001", record.TransactionID)
	assert.Equal(t, "John Smith", record.CustomerName)
	assert.Equal(t, string(StatusSARFiled), record.Disposition)
	assert.Equal(t, []string{
		"initial_screening", "document_check", "behavior_check",
		"sanctions_check", "generate_sar",
	}, record.DecisionPath)
}

func TestServiceRejectsInvalidTransaction(t *testing.T) {
	svc := newTestService(t, nil)

	tx := fiatTransaction()
	tx.OriginCountry = ""
	_, err := svc.Screen(context.Background(), tx, standardCustomer())
	require.Error(t, err)

	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestServiceRejectsNegativeAmount(t *testing.T) {
	svc := newTestService(t, nil)

	tx := fiatTransaction()
	tx.Amount = decimal.NewFromInt(-1)
	_, err := svc.Screen(context.Background(), tx, standardCustomer())
	require.Error(t, err)

	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "amount", verr.Field)
}

func TestServiceRejectsInvalidCustomer(t *testing.T) {
	svc := newTestService(t, nil)

	customer := standardCustomer()
	customer.Name = ""
	_, err := svc.Screen(context.Background(), fiatTransaction(), customer)
	require.Error(t, err)

	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestServiceWorksWithoutStore(t *testing.T) {
	svc := newTestService(t, nil)

	terminal, err := svc.Screen(context.Background(), fiatTransaction(), standardCustomer())
	require.NoError(t, err)
	assert.Equal(t, StatusUnderReview, terminal.ReportingStatus)
}
