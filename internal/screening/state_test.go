package screening

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aidin1998/amlguard/internal/annotator"
)

func TestNewState(t *testing.T) {
	s := NewState(fiatTransaction(), standardCustomer())

	assert.Equal(t, PEPUnknown, s.PEPStatus)
	assert.Zero(t, s.RiskScore)
	assert.Empty(t, s.DecisionPath)
	assert.Empty(t, s.Alerts)
	assert.NotNil(t, s.Findings)
	assert.Equal(t, ReportingStatus(""), s.ReportingStatus)
}

func TestStateUpdatesDoNotMutateInput(t *testing.T) {
	base := NewState(fiatTransaction(), standardCustomer())
	base = base.withAlerts(AlertMissingDocuments)
	base = base.withRiskFactors("CRYPTO_MIXER")
	base = base.withFinding(FindingDocumentRisks, []annotator.RiskCode{annotator.CodeShellCompany})
	base = base.withPath(StageInitialScreening)

	next := base.withAlerts(AlertStructuringPattern).
		withRiskFactors("HIGH_RISK_IR").
		withFinding(FindingEDDReport, []annotator.RiskCode{annotator.CodeLayeringRisk}).
		withPath(StageBehaviorCheck).
		withSanctionHits([]string{"shady corp"}).
		withPEPStatus(PEPConfirmed).
		withRiskScore(72)

	// The earlier snapshot is untouched.
	assert.Equal(t, []Alert{AlertMissingDocuments}, base.Alerts)
	assert.Equal(t, []string{"CRYPTO_MIXER"}, base.RiskFactors)
	assert.Equal(t, []Stage{StageInitialScreening}, base.DecisionPath)
	assert.Empty(t, base.SanctionHits)
	assert.Equal(t, PEPUnknown, base.PEPStatus)
	assert.Zero(t, base.RiskScore)
	assert.NotContains(t, base.Findings, FindingEDDReport)

	// The new snapshot carries everything forward.
	assert.Equal(t, []Alert{AlertMissingDocuments, AlertStructuringPattern}, next.Alerts)
	assert.Equal(t, []string{"CRYPTO_MIXER", "HIGH_RISK_IR"}, next.RiskFactors)
	assert.Equal(t, []Stage{StageInitialScreening, StageBehaviorCheck}, next.DecisionPath)
	assert.Equal(t, []string{"shady corp"}, next.SanctionHits)
	assert.Equal(t, PEPConfirmed, next.PEPStatus)
	assert.Equal(t, 72, next.RiskScore)
}

func TestStateFindingsAreNotAliased(t *testing.T) {
	codes := []annotator.RiskCode{annotator.CodeInvoiceMismatch}
	base := NewState(fiatTransaction(), standardCustomer()).
		withFinding(FindingDocumentRisks, codes)

	// Mutating the caller's slice must not leak into the state.
	codes[0] = annotator.CodePhantomShipment
	assert.Equal(t, []annotator.RiskCode{annotator.CodeInvoiceMismatch}, base.Findings[FindingDocumentRisks])

	next := base.withRiskScore(10)
	next.Findings[FindingDocumentRisks][0] = annotator.CodeShellCompany
	assert.Equal(t, []annotator.RiskCode{annotator.CodeInvoiceMismatch}, base.Findings[FindingDocumentRisks])
}

func TestStateTerminalTransitions(t *testing.T) {
	filedAt := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	base := NewState(fiatTransaction(), standardCustomer())

	sar := base.withSARFiled("CASE-9", filedAt)
	assert.Equal(t, StatusSARFiled, sar.ReportingStatus)
	assert.Equal(t, "CASE-9", sar.CaseID)
	require.NotNil(t, sar.FiledAt)
	assert.Equal(t, filedAt, *sar.FiledAt)

	deadline := filedAt.Add(24 * time.Hour)
	review := base.withUnderReview(deadline)
	assert.Equal(t, StatusUnderReview, review.ReportingStatus)
	require.NotNil(t, review.ReviewDeadline)
	assert.Equal(t, deadline, *review.ReviewDeadline)

	// base stays untouched by either branch.
	assert.Equal(t, ReportingStatus(""), base.ReportingStatus)
	assert.Nil(t, base.FiledAt)
	assert.Nil(t, base.ReviewDeadline)
}

func TestVisitedAndFactorCounting(t *testing.T) {
	s := NewState(fiatTransaction(), standardCustomer()).
		withPath(StageInitialScreening).
		withPath(StageCryptoAnalysis).
		withRiskFactors("CRYPTO_MIXER", "NEW_WALLET", "HIGH_RISK_IR", "CRYPTO_EXCHANGE")

	assert.True(t, s.Visited(StageCryptoAnalysis))
	assert.False(t, s.Visited(StageEDD))
	assert.Equal(t, 2, s.CountFactorsContaining("CRYPTO"))
	assert.Equal(t, 1, s.CountFactorsContaining("HIGH_RISK"))
	assert.Zero(t, s.CountFactorsContaining("PEP"))
}
