package screening

import (
	"strings"
	"time"

	"github.com/Aidin1998/amlguard/internal/annotator"
	"github.com/Aidin1998/amlguard/internal/model"
)

// Alert is a behavioral or operational alert code raised during a run.
// Duplicates are allowed; distinctness is a presentation concern.
type Alert string

const (
	AlertMissingDocuments       Alert = "MISSING_DOCUMENTS"
	AlertStructuringPattern     Alert = "STRUCTURING_PATTERN"
	AlertUniformTransactions    Alert = "UNIFORM_TRANSACTIONS"
	AlertAnnotationUnavailable  Alert = "ANNOTATION_UNAVAILABLE"
	AlertPossibleSanctionsMatch Alert = "POSSIBLE_SANCTIONS_MATCH"
)

// ReportingStatus is the terminal disposition of a screening run.
type ReportingStatus string

const (
	StatusSARFiled    ReportingStatus = "SAR_FILED"
	StatusCleared     ReportingStatus = "CLEARED"
	StatusUnderReview ReportingStatus = "UNDER_REVIEW"
)

// PEPStatus is the tri-state politically-exposed-person determination.
type PEPStatus string

const (
	PEPUnknown   PEPStatus = "UNKNOWN"
	PEPConfirmed PEPStatus = "CONFIRMED"
	PEPClear     PEPStatus = "CLEAR"
)

// Findings map keys.
const (
	FindingDocumentRisks = "document_risks"
	FindingEDDReport     = "edd_report"
)

// State is the evidence accumulator threaded through the screening
// graph. Stages never mutate their input; every update clones the state
// first, so a handler's caller keeps an unaliased snapshot and runs
// never share mutable data.
type State struct {
	Transaction *model.Transaction
	Customer    *model.Customer

	RiskScore    int
	Alerts       []Alert
	RiskFactors  []string
	SanctionHits []string
	PEPStatus    PEPStatus

	// DecisionPath records every stage visited, in order. It is the
	// audit trail: append-only, never reordered or truncated.
	DecisionPath []Stage

	Findings map[string][]annotator.RiskCode

	ReportingStatus ReportingStatus
	CaseID          string
	FiledAt         *time.Time
	ReviewDeadline  *time.Time
}

// NewState creates the initial state for one screening run. The
// transaction and customer are read-only references for the run's
// lifetime.
func NewState(tx *model.Transaction, customer *model.Customer) *State {
	return &State{
		Transaction: tx,
		Customer:    customer,
		PEPStatus:   PEPUnknown,
		Findings:    make(map[string][]annotator.RiskCode),
	}
}

func (s *State) clone() *State {
	next := *s
	next.Alerts = append([]Alert(nil), s.Alerts...)
	next.RiskFactors = append([]string(nil), s.RiskFactors...)
	next.SanctionHits = append([]string(nil), s.SanctionHits...)
	next.DecisionPath = append([]Stage(nil), s.DecisionPath...)
	next.Findings = make(map[string][]annotator.RiskCode, len(s.Findings))
	for source, codes := range s.Findings {
		next.Findings[source] = append([]annotator.RiskCode(nil), codes...)
	}
	return &next
}

func (s *State) withPath(stage Stage) *State {
	next := s.clone()
	next.DecisionPath = append(next.DecisionPath, stage)
	return next
}

func (s *State) withAlerts(alerts ...Alert) *State {
	if len(alerts) == 0 {
		return s
	}
	next := s.clone()
	next.Alerts = append(next.Alerts, alerts...)
	return next
}

func (s *State) withRiskFactors(factors ...string) *State {
	if len(factors) == 0 {
		return s
	}
	next := s.clone()
	next.RiskFactors = append(next.RiskFactors, factors...)
	return next
}

func (s *State) withSanctionHits(hits []string) *State {
	next := s.clone()
	next.SanctionHits = append([]string(nil), hits...)
	return next
}

func (s *State) withPEPStatus(status PEPStatus) *State {
	next := s.clone()
	next.PEPStatus = status
	return next
}

func (s *State) withFinding(source string, codes []annotator.RiskCode) *State {
	next := s.clone()
	next.Findings[source] = append([]annotator.RiskCode(nil), codes...)
	return next
}

func (s *State) withRiskScore(score int) *State {
	next := s.clone()
	next.RiskScore = score
	return next
}

func (s *State) withSARFiled(caseID string, filedAt time.Time) *State {
	next := s.clone()
	next.ReportingStatus = StatusSARFiled
	next.CaseID = caseID
	next.FiledAt = &filedAt
	return next
}

func (s *State) withUnderReview(deadline time.Time) *State {
	next := s.clone()
	next.ReportingStatus = StatusUnderReview
	next.ReviewDeadline = &deadline
	return next
}

// Visited reports whether the stage already appears in the decision path.
func (s *State) Visited(stage Stage) bool {
	for _, visited := range s.DecisionPath {
		if visited == stage {
			return true
		}
	}
	return false
}

// CountFactorsContaining returns how many risk factors contain the
// given substring.
func (s *State) CountFactorsContaining(substr string) int {
	n := 0
	for _, factor := range s.RiskFactors {
		if strings.Contains(factor, substr) {
			n++
		}
	}
	return n
}
