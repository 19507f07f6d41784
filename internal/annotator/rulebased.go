package annotator

import (
	"context"
	"sort"
	"strings"
)

// RuleBased is the default deterministic Annotator. It scans document
// text for per-code keyword patterns (and literal code mentions) and
// derives due-diligence codes from the structured summary. A model-backed
// implementation can replace it behind the same interface.
type RuleBased struct {
	documentPatterns map[RiskCode][]string
}

// NewRuleBased creates a rule-based annotator with the built-in
// keyword patterns.
func NewRuleBased() *RuleBased {
	return &RuleBased{
		documentPatterns: map[RiskCode][]string{
			CodeInvoiceMismatch: {
				"invoice mismatch", "mismatched invoice", "over-invoic", "under-invoic",
				"invoice discrepanc",
			},
			CodePhantomShipment: {
				"phantom shipment", "no goods shipped", "goods never delivered",
				"missing shipment",
			},
			CodeProhibitedGoods: {
				"prohibited goods", "restricted goods", "contraband", "dual-use goods",
			},
			CodeShellCompany: {
				"shell company", "shell corporation", "no business activity",
				"nominee director",
			},
			CodeDarknetConnection: {
				"darknet", "dark web", "hidden marketplace",
			},
			CodeTradeBasedLaundering: {
				"trade-based money laundering", "trade based laundering", "tbml",
				"misrepresented value",
			},
		},
	}
}

// Annotate implements Annotator.
func (r *RuleBased) Annotate(ctx context.Context, req Request) ([]RiskCode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch {
	case req.Summary != nil:
		return r.annotateSummary(req.Summary), nil
	case len(req.Documents) > 0:
		return r.annotateDocuments(req.Documents), nil
	default:
		return nil, nil
	}
}

func (r *RuleBased) annotateDocuments(documents []string) []RiskCode {
	seen := make(map[RiskCode]bool)
	var codes []RiskCode
	add := func(code RiskCode) {
		if !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	for _, doc := range documents {
		lower := strings.ToLower(doc)
		for code, patterns := range r.documentPatterns {
			for _, p := range patterns {
				if strings.Contains(lower, p) {
					add(code)
					break
				}
			}
		}
		// Documents sometimes quote risk codes verbatim.
		for _, code := range ExtractCodes(doc, DocumentVocabulary) {
			add(code)
		}
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

func (r *RuleBased) annotateSummary(summary *DueDiligenceSummary) []RiskCode {
	var codes []RiskCode
	if len(summary.SanctionHits) > 0 {
		codes = append(codes, CodeSanctionsExposure)
	}
	if summary.PEPConfirmed {
		codes = append(codes, CodePEPRelationship)
	}
	for _, factor := range summary.RiskFactors {
		if strings.Contains(factor, "CRYPTO_MIXER") || strings.Contains(factor, "DARKNET") {
			codes = append(codes, CodeLayeringRisk)
			break
		}
	}
	if len(summary.RiskFactors) >= 3 {
		codes = append(codes, CodeCompoundRiskProfile)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}
