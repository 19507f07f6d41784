package casestore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSaveAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	record := Record{
		CaseID:        "CASE-1",
		TransactionID: "TX-1",
		Disposition:   "SAR_FILED",
		RiskScore:     72,
		CreatedAt:     time.Now(),
	}
	require.NoError(t, store.Save(ctx, record))

	got, err := store.Get(ctx, "CASE-1")
	require.NoError(t, err)
	assert.Equal(t, record, got)
}

func TestMemoryStoreGetMissing(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Get(context.Background(), "CASE-NOPE")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreListNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, Record{TransactionID: "TX-OLD", CreatedAt: base}))
	require.NoError(t, store.Save(ctx, Record{TransactionID: "TX-NEW", CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, store.Save(ctx, Record{TransactionID: "TX-MID", CreatedAt: base.Add(30 * time.Minute)}))

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "TX-NEW", records[0].TransactionID)
	assert.Equal(t, "TX-MID", records[1].TransactionID)
	assert.Equal(t, "TX-OLD", records[2].TransactionID)
}

func TestMemoryStoreListsRecordsWithoutCaseID(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	// Review dispositions carry no case ID but still appear in listings.
	require.NoError(t, store.Save(ctx, Record{
		TransactionID: "TX-REVIEW",
		Disposition:   "UNDER_REVIEW",
		CreatedAt:     time.Now(),
	}))

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "TX-REVIEW", records[0].TransactionID)

	_, err = store.Get(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)
}
