// Package annotator defines the risk annotation boundary: free-text
// evidence (trade documents, due-diligence summaries) goes in, a set of
// codes from a closed, versioned vocabulary comes out. Implementations
// may be rule-based or model-backed; the screening core only ever sees
// typed codes.
package annotator

import (
	"context"
	"regexp"
	"sort"
)

// VocabularyVersion identifies the risk code vocabulary in effect.
const VocabularyVersion = "v1"

// RiskCode is a single annotation result drawn from the closed vocabulary.
type RiskCode string

// Document analysis vocabulary.
const (
	CodeInvoiceMismatch      RiskCode = "INVOICE_MISMATCH"
	CodePhantomShipment      RiskCode = "PHANTOM_SHIPMENT"
	CodeProhibitedGoods      RiskCode = "PROHIBITED_GOODS"
	CodeShellCompany         RiskCode = "SHELL_COMPANY"
	CodeDarknetConnection    RiskCode = "DARKNET_CONNECTION"
	CodeTradeBasedLaundering RiskCode = "TRADE_BASED_LAUNDERING"
)

// Enhanced due diligence vocabulary.
const (
	CodeSanctionsExposure   RiskCode = "SANCTIONS_EXPOSURE"
	CodePEPRelationship     RiskCode = "PEP_RELATIONSHIP"
	CodeLayeringRisk        RiskCode = "LAYERING_RISK"
	CodeCompoundRiskProfile RiskCode = "COMPOUND_RISK_PROFILE"
)

// DocumentVocabulary lists the codes a document analysis may return.
var DocumentVocabulary = []RiskCode{
	CodeInvoiceMismatch,
	CodePhantomShipment,
	CodeProhibitedGoods,
	CodeShellCompany,
	CodeDarknetConnection,
	CodeTradeBasedLaundering,
}

// DueDiligenceVocabulary lists the codes an EDD analysis may return.
var DueDiligenceVocabulary = []RiskCode{
	CodeSanctionsExposure,
	CodePEPRelationship,
	CodeLayeringRisk,
	CodeCompoundRiskProfile,
}

// DueDiligenceSummary is the structured evidence handed to the annotator
// during enhanced due diligence.
type DueDiligenceSummary struct {
	PEPConfirmed bool     `json:"pep_confirmed"`
	SanctionHits []string `json:"sanction_hits"`
	RiskFactors  []string `json:"risk_factors"`
}

// Request is a single annotation call. Exactly one of Documents or
// Summary is populated, depending on the call site.
type Request struct {
	// Source names the findings bucket the result lands in,
	// e.g. "document_risks" or "edd_report".
	Source    string
	Documents []string
	Summary   *DueDiligenceSummary
}

// Annotator extracts risk codes from screening evidence. Empty or
// unparseable input yields an empty set, not an error; errors are
// reserved for transport-level failures and map to fail-open at the
// call site.
type Annotator interface {
	Annotate(ctx context.Context, req Request) ([]RiskCode, error)
}

var codeTokenPattern = regexp.MustCompile(`[A-Z][A-Z_]{3,}`)

// ExtractCodes pulls vocabulary codes out of free text. Tokens outside
// the given vocabulary are dropped; the result is deduplicated and
// sorted so identical text always annotates identically.
func ExtractCodes(text string, vocabulary []RiskCode) []RiskCode {
	known := make(map[RiskCode]bool, len(vocabulary))
	for _, c := range vocabulary {
		known[c] = true
	}
	seen := make(map[RiskCode]bool)
	var codes []RiskCode
	for _, token := range codeTokenPattern.FindAllString(text, -1) {
		code := RiskCode(token)
		if known[code] && !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}
