// Package report reads a terminal screening state into the disposition
// artifact consumers see. Rendering and persistence of the artifact are
// downstream concerns; this package only shapes the data.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Aidin1998/amlguard/internal/screening"
)

// RiskLevel bands the final score for reporting.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "LOW"
	RiskLevelMedium   RiskLevel = "MEDIUM"
	RiskLevelHigh     RiskLevel = "HIGH"
	RiskLevelCritical RiskLevel = "CRITICAL"
)

// DeriveRiskLevel maps a 0-100 score onto a risk band.
func DeriveRiskLevel(score int) RiskLevel {
	switch {
	case score >= 80:
		return RiskLevelCritical
	case score >= 60:
		return RiskLevelHigh
	case score >= 30:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

// Report is the screening disposition artifact.
type Report struct {
	TransactionID   string                `json:"transaction_id"`
	CustomerName    string                `json:"customer_name"`
	RiskScore       int                   `json:"risk_score"`
	RiskLevel       RiskLevel             `json:"risk_level"`
	DecisionPath    []string              `json:"decision_path"`
	Alerts          []string              `json:"alerts,omitempty"`
	RiskFactors     []string              `json:"risk_factors,omitempty"`
	SanctionHits    []string              `json:"sanction_hits,omitempty"`
	PEPStatus       string                `json:"pep_status"`
	Findings        map[string][]string   `json:"findings,omitempty"`
	ReportingStatus string                `json:"reporting_status"`
	CaseID          string                `json:"case_id,omitempty"`
	FiledAt         *time.Time            `json:"filed_at,omitempty"`
	ReviewDeadline  *time.Time            `json:"review_deadline,omitempty"`
}

// FromState builds the report from a terminal workflow state. Alerts
// are deduplicated here — distinctness is a presentation concern, the
// state keeps every occurrence.
func FromState(s *screening.State) *Report {
	path := make([]string, len(s.DecisionPath))
	for i, stage := range s.DecisionPath {
		path[i] = string(stage)
	}

	findings := make(map[string][]string, len(s.Findings))
	for source, codes := range s.Findings {
		values := make([]string, len(codes))
		for i, code := range codes {
			values[i] = string(code)
		}
		findings[source] = values
	}

	return &Report{
		TransactionID:   s.Transaction.ID,
		CustomerName:    s.Customer.Name,
		RiskScore:       s.RiskScore,
		RiskLevel:       DeriveRiskLevel(s.RiskScore),
		DecisionPath:    path,
		Alerts:          distinctAlerts(s.Alerts),
		RiskFactors:     append([]string(nil), s.RiskFactors...),
		SanctionHits:    append([]string(nil), s.SanctionHits...),
		PEPStatus:       string(s.PEPStatus),
		Findings:        findings,
		ReportingStatus: string(s.ReportingStatus),
		CaseID:          s.CaseID,
		FiledAt:         s.FiledAt,
		ReviewDeadline:  s.ReviewDeadline,
	}
}

// Render produces the human-readable analysis report.
func (r *Report) Render() string {
	var b strings.Builder
	b.WriteString("AML Analysis Report\n")
	b.WriteString(strings.Repeat("=", 40) + "\n")
	fmt.Fprintf(&b, "Final Risk Score: %d/100 (%s)\n", r.RiskScore, r.RiskLevel)
	fmt.Fprintf(&b, "Decision Path: %s\n", strings.Join(r.DecisionPath, " -> "))

	if len(r.Alerts) > 0 {
		b.WriteString("\nTriggered Alerts:\n")
		for _, alert := range r.Alerts {
			fmt.Fprintf(&b, "- %s\n", alert)
		}
	}

	if len(r.Findings) > 0 {
		b.WriteString("\nAnnotation Findings:\n")
		for _, source := range sortedKeys(r.Findings) {
			fmt.Fprintf(&b, "%s: %s\n", source, strings.Join(r.Findings[source], ", "))
		}
	}

	switch r.ReportingStatus {
	case string(screening.StatusSARFiled):
		fmt.Fprintf(&b, "\nSAR Generated: %s\n", r.CaseID)
		if r.FiledAt != nil {
			fmt.Fprintf(&b, "Filed at: %s\n", r.FiledAt.Format(time.RFC3339))
		}
	case string(screening.StatusUnderReview):
		b.WriteString("\nRequires Human Review\n")
		if r.ReviewDeadline != nil {
			fmt.Fprintf(&b, "Deadline: %s\n", r.ReviewDeadline.Format(time.RFC3339))
		}
	}

	return b.String()
}

func distinctAlerts(alerts []screening.Alert) []string {
	seen := make(map[screening.Alert]bool, len(alerts))
	var out []string
	for _, alert := range alerts {
		if !seen[alert] {
			seen[alert] = true
			out = append(out, string(alert))
		}
	}
	return out
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
