package screening

import (
	"strings"

	"go.uber.org/zap"

	"github.com/Aidin1998/amlguard/internal/model"
)

// NewEngine wires the screening graph around the given stage handlers
// and validates it. The graph is fixed; only the thresholds inside the
// predicates come from configuration.
func NewEngine(stages *Stages, logger *zap.Logger) (*Engine, error) {
	nodes := map[Stage]*node{
		StageInitialScreening: {
			handler: stages.InitialScreening,
			route: &router{
				eval: stages.routeInitialScreening,
				edges: map[RouteLabel]Stage{
					LabelCryptoTransaction: StageCryptoAnalysis,
					LabelLargeTransaction:  StageGeoAnalysis,
					LabelNewAccount:        StageEDD,
					LabelStandardFlow:      StageDocumentCheck,
				},
			},
		},
		StageCryptoAnalysis: {
			handler: stages.CryptoAnalysis,
			route: &router{
				eval: routeCryptoAnalysis,
				edges: map[RouteLabel]Stage{
					LabelHighRiskCrypto: StageEDD,
					LabelNormalCrypto:   StageDocumentCheck,
				},
			},
		},
		StageGeoAnalysis: {
			handler: stages.GeoAnalysis,
			next:    StageDocumentCheck,
		},
		StageDocumentCheck: {
			handler: stages.DocumentCheck,
			next:    StageBehaviorCheck,
		},
		StageBehaviorCheck: {
			handler: stages.BehaviorCheck,
			next:    StageSanctionsCheck,
		},
		StageSanctionsCheck: {
			handler: stages.SanctionsCheck,
			route: &router{
				eval: routeSanctionsCheck,
				edges: map[RouteLabel]Stage{
					LabelSanctionHit: StageGenerateSAR,
					LabelNoHit:       StagePEPCheck,
				},
			},
		},
		StagePEPCheck: {
			handler: stages.PEPCheck,
			route: &router{
				eval: routePEPCheck,
				edges: map[RouteLabel]Stage{
					LabelPEPFound: StageEDD,
					LabelNoPEP:    StageScoreRisk,
				},
			},
		},
		StageEDD: {
			handler: stages.EnhancedDueDiligence,
			next:    StageScoreRisk,
		},
		StageScoreRisk: {
			handler: stages.ScoreRisk,
			route: &router{
				eval: stages.routeScoreRisk,
				edges: map[RouteLabel]Stage{
					LabelHighRisk: StageGenerateSAR,
					LabelLowRisk:  StageHumanReview,
				},
			},
		},
		StageGenerateSAR: {
			handler:  stages.GenerateSAR,
			terminal: true,
		},
		StageHumanReview: {
			handler:  stages.HumanReview,
			terminal: true,
		},
	}

	return newEngine(StageInitialScreening, nodes, logger)
}

// Routing predicates. All are pure functions of the state and static
// configuration; at multi-branch nodes the checks run in listed order
// and the first match wins.

func (st *Stages) routeInitialScreening(s *State) RouteLabel {
	if s.Transaction.AssetType == model.AssetTypeCrypto {
		return LabelCryptoTransaction
	}
	if s.Transaction.Amount.GreaterThan(st.largeThreshold) {
		return LabelLargeTransaction
	}
	if s.Customer.AccountAgeDays < st.cfg.Screening.NewAccountMaxAgeDays {
		return LabelNewAccount
	}
	return LabelStandardFlow
}

func routeCryptoAnalysis(s *State) RouteLabel {
	for _, factor := range s.RiskFactors {
		if strings.Contains(factor, "CRYPTO") {
			return LabelHighRiskCrypto
		}
	}
	return LabelNormalCrypto
}

func routeSanctionsCheck(s *State) RouteLabel {
	if len(s.SanctionHits) > 0 {
		return LabelSanctionHit
	}
	return LabelNoHit
}

func routePEPCheck(s *State) RouteLabel {
	if s.PEPStatus == PEPConfirmed {
		return LabelPEPFound
	}
	return LabelNoPEP
}

func (st *Stages) routeScoreRisk(s *State) RouteLabel {
	if s.RiskScore >= st.cfg.Scoring.SARThreshold {
		return LabelHighRisk
	}
	return LabelLowRisk
}
