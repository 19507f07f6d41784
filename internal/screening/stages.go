package screening

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Aidin1998/amlguard/internal/annotator"
	"github.com/Aidin1998/amlguard/internal/config"
	"github.com/Aidin1998/amlguard/internal/model"
	"github.com/Aidin1998/amlguard/internal/watchlist"
)

// Stages holds the handlers for every screening activity. Apart from
// the two annotator calls, every handler is a pure function of the
// state and the static configuration.
type Stages struct {
	cfg       *config.Config
	screener  *watchlist.Screener
	annotator annotator.Annotator
	metrics   *Metrics
	logger    *zap.Logger

	largeThreshold decimal.Decimal
	amountCeiling  decimal.Decimal
	highRisk       map[string]bool
	taxHavens      map[string]bool
	darknetMarkets map[string]bool

	now       func() time.Time
	newCaseID func() string
}

// NewStages builds the stage handler set. The annotator passed here
// should already carry timeout/retry handling; handlers treat any error
// from it as fail-open.
func NewStages(cfg *config.Config, screener *watchlist.Screener, ann annotator.Annotator, metrics *Metrics, logger *zap.Logger) *Stages {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stages{
		cfg:            cfg,
		screener:       screener,
		annotator:      ann,
		metrics:        metrics,
		logger:         logger,
		largeThreshold: decimal.NewFromFloat(cfg.Screening.LargeTransactionThreshold),
		amountCeiling:  decimal.NewFromFloat(cfg.Structuring.AmountCeiling),
		highRisk:       toSet(cfg.Lists.HighRiskCountries),
		taxHavens:      toSet(cfg.Lists.TaxHavens),
		darknetMarkets: toSet(cfg.Lists.DarknetMarkets),
		now:            time.Now,
		newCaseID:      func() string { return uuid.NewString() },
	}
}

// WithClock overrides the time source. Tests use it to pin review
// deadlines and filing instants.
func (st *Stages) WithClock(now func() time.Time) *Stages {
	st.now = now
	return st
}

// WithCaseIDFunc overrides case ID generation.
func (st *Stages) WithCaseIDFunc(gen func() string) *Stages {
	st.newCaseID = gen
	return st
}

// InitialScreening is the entry stage. Routing to the first assessment
// happens in its predicate; the handler itself accumulates no evidence.
func (st *Stages) InitialScreening(ctx context.Context, s *State) (*State, error) {
	return s, nil
}

// CryptoAnalysis adds cryptocurrency-specific risk factors. Non-crypto
// transactions pass through untouched.
func (st *Stages) CryptoAnalysis(ctx context.Context, s *State) (*State, error) {
	if s.Transaction.AssetType != model.AssetTypeCrypto || s.Transaction.CryptoDetails == nil {
		return s, nil
	}
	details := s.Transaction.CryptoDetails

	var factors []string
	if details.MixerUsed {
		factors = append(factors, "CRYPTO_MIXER")
	}
	if details.DarknetMarket != "" && st.darknetMarkets[details.DarknetMarket] {
		factors = append(factors, "DARKNET_CONNECTION")
	}
	if details.WalletAgeDays < st.cfg.Screening.NewWalletMaxAgeDays {
		factors = append(factors, "NEW_WALLET")
	}
	return s.withRiskFactors(factors...), nil
}

// GeoAnalysis checks every jurisdiction the funds touch. A country on
// both lists contributes both factors.
func (st *Stages) GeoAnalysis(ctx context.Context, s *State) (*State, error) {
	locations := make([]string, 0, 2+len(s.Transaction.IntermediateCountries))
	locations = append(locations, s.Transaction.OriginCountry, s.Transaction.DestinationCountry)
	locations = append(locations, s.Transaction.IntermediateCountries...)

	var factors []string
	for _, country := range locations {
		if st.highRisk[country] {
			factors = append(factors, "HIGH_RISK_"+country)
		}
		if st.taxHavens[country] {
			factors = append(factors, "TAX_HAVEN_"+country)
		}
	}
	return s.withRiskFactors(factors...), nil
}

// DocumentCheck sends attached documents to the risk annotator and
// merges the returned codes. Missing documents raise an alert instead;
// annotator exhaustion fails open with a diagnostic alert.
func (st *Stages) DocumentCheck(ctx context.Context, s *State) (*State, error) {
	if len(s.Transaction.Documents) == 0 {
		return s.withAlerts(AlertMissingDocuments), nil
	}

	codes, err := st.annotator.Annotate(ctx, annotator.Request{
		Source:    FindingDocumentRisks,
		Documents: s.Transaction.Documents,
	})
	if err != nil {
		return st.annotationFailed(ctx, s, FindingDocumentRisks, err)
	}

	s = s.withFinding(FindingDocumentRisks, codes)
	return s.withRiskFactors(codesToFactors(codes)...), nil
}

// BehaviorCheck runs structuring detection over the customer's recent
// activity plus the current transaction. The two checks are
// independent; the minimum sample sizes keep the statistics stable.
func (st *Stages) BehaviorCheck(ctx context.Context, s *State) (*State, error) {
	window := st.cfg.Structuring.Window
	current := s.Transaction

	amounts := make([]decimal.Decimal, 0, len(s.Customer.TransactionHistory)+1)
	for _, prior := range s.Customer.TransactionHistory {
		if current.Timestamp.Sub(prior.Timestamp) < window {
			amounts = append(amounts, prior.Amount)
		}
	}
	amounts = append(amounts, current.Amount)

	var alerts []Alert
	if len(amounts) > st.cfg.Structuring.MinClusterCount && allBelow(amounts, st.amountCeiling) {
		alerts = append(alerts, AlertStructuringPattern)
	}
	if len(amounts) > st.cfg.Structuring.UniformMinCount &&
		sampleStddev(amounts) < st.cfg.Structuring.UniformMaxStddev {
		alerts = append(alerts, AlertUniformTransactions)
	}
	return s.withAlerts(alerts...), nil
}

// SanctionsCheck matches transaction parties against the sanctions
// list. Near matches (when fuzzy matching is enabled) raise advisory
// alerts without counting as hits.
func (st *Stages) SanctionsCheck(ctx context.Context, s *State) (*State, error) {
	hits := st.screener.SanctionHits(s.Transaction.Parties)
	s = s.withSanctionHits(hits)

	for range st.screener.NearMatches(s.Transaction.Parties) {
		s = s.withAlerts(AlertPossibleSanctionsMatch)
	}
	return s, nil
}

// PEPCheck resolves the customer's politically-exposed-person status.
func (st *Stages) PEPCheck(ctx context.Context, s *State) (*State, error) {
	if st.screener.IsPEP(s.Customer.Name) {
		return s.withPEPStatus(PEPConfirmed), nil
	}
	return s.withPEPStatus(PEPClear), nil
}

// EnhancedDueDiligence hands the accumulated evidence to the annotator
// for a deep-investigation pass and merges the critical-risk codes.
func (st *Stages) EnhancedDueDiligence(ctx context.Context, s *State) (*State, error) {
	codes, err := st.annotator.Annotate(ctx, annotator.Request{
		Source: FindingEDDReport,
		Summary: &annotator.DueDiligenceSummary{
			PEPConfirmed: s.PEPStatus == PEPConfirmed,
			SanctionHits: append([]string(nil), s.SanctionHits...),
			RiskFactors:  append([]string(nil), s.RiskFactors...),
		},
	})
	if err != nil {
		return st.annotationFailed(ctx, s, FindingEDDReport, err)
	}

	s = s.withFinding(FindingEDDReport, codes)
	return s.withRiskFactors(codesToFactors(codes)...), nil
}

// ScoreRisk combines the accumulated evidence into the final weighted
// score. The sum-then-clamp order is fixed; the score is set exactly
// once per run.
func (st *Stages) ScoreRisk(ctx context.Context, s *State) (*State, error) {
	w := st.cfg.Scoring

	score := w.SanctionHitWeight * len(s.SanctionHits)
	if s.PEPStatus == PEPConfirmed {
		score += w.PEPWeight
	}
	score += w.CryptoFactorWeight * s.CountFactorsContaining("CRYPTO")
	score += w.JurisdictionFactorWeight * s.CountFactorsContaining("HIGH_RISK")
	score += w.DocumentRiskWeight * len(s.Findings[FindingDocumentRisks])
	score += w.AlertWeight * len(s.Alerts)

	if score > w.MaxScore {
		score = w.MaxScore
	}
	return s.withRiskScore(score), nil
}

// GenerateSAR files the suspicious activity report: terminal
// disposition, fresh case ID, filing instant.
func (st *Stages) GenerateSAR(ctx context.Context, s *State) (*State, error) {
	caseID := st.newCaseID()
	st.logger.Info("filing SAR",
		zap.String("case_id", caseID),
		zap.String("transaction_id", s.Transaction.ID),
		zap.Int("risk_score", s.RiskScore))
	return s.withSARFiled(caseID, st.now()), nil
}

// HumanReview queues the run for analyst review with a deadline.
func (st *Stages) HumanReview(ctx context.Context, s *State) (*State, error) {
	deadline := st.now().Add(st.cfg.Review.Deadline)
	return s.withUnderReview(deadline), nil
}

// annotationFailed implements fail-open for the annotator call sites:
// empty code set, diagnostic alert, run continues. Caller cancellation
// is the one error that still aborts the run.
func (st *Stages) annotationFailed(ctx context.Context, s *State, source string, err error) (*State, error) {
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return nil, err
	}
	st.logger.Warn("annotation degraded, continuing without findings",
		zap.String("source", source),
		zap.String("transaction_id", s.Transaction.ID),
		zap.Error(err))
	st.metrics.AnnotatorFailure(source)
	return s.withAlerts(AlertAnnotationUnavailable), nil
}

func codesToFactors(codes []annotator.RiskCode) []string {
	factors := make([]string, 0, len(codes))
	for _, code := range codes {
		factors = append(factors, string(code))
	}
	return factors
}

func allBelow(amounts []decimal.Decimal, ceiling decimal.Decimal) bool {
	for _, amount := range amounts {
		if !amount.LessThan(ceiling) {
			return false
		}
	}
	return true
}

// sampleStddev computes the n-1 standard deviation of the amounts.
// Callers gate on minimum sample sizes, but a short slice still yields
// a defined 0 rather than NaN.
func sampleStddev(amounts []decimal.Decimal) float64 {
	if len(amounts) < 2 {
		return 0
	}
	values := make([]float64, len(amounts))
	var sum float64
	for i, amount := range amounts {
		v, _ := amount.Float64()
		values[i] = v
		sum += v
	}
	mean := sum / float64(len(values))
	var ss float64
	for _, v := range values {
		ss += (v - mean) * (v - mean)
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
