// Package casestore is the seam to the persistence collaborator. The
// screening core only depends on the Store interface; the in-memory
// implementation backs the API process and tests.
package casestore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no case exists for the given ID.
var ErrNotFound = errors.New("case not found")

// Record is the durable trace of a screening disposition.
type Record struct {
	CaseID        string     `json:"case_id,omitempty"`
	TransactionID string     `json:"transaction_id"`
	CustomerName  string     `json:"customer_name"`
	Disposition   string     `json:"disposition"`
	RiskScore     int        `json:"risk_score"`
	DecisionPath  []string   `json:"decision_path"`
	FiledAt       *time.Time `json:"filed_at,omitempty"`
	ReviewDeadline *time.Time `json:"review_deadline,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Store persists screening dispositions.
type Store interface {
	Save(ctx context.Context, record Record) error
	Get(ctx context.Context, caseID string) (Record, error)
	List(ctx context.Context) ([]Record, error)
}
