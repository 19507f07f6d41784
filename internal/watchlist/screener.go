// Package watchlist provides the sanctions and PEP lookup capabilities
// consumed by the screening stages. Lookups are pure functions of the
// static configuration and are safe for concurrent use.
package watchlist

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/Aidin1998/amlguard/internal/config"
)

// Screener matches entity and customer names against the configured
// sanctions list and PEP keyword set.
type Screener struct {
	sanctioned  []string
	pepKeywords []string
	fuzzy       bool
	maxDistance int
}

// NewScreener builds a screener from the static risk configuration.
func NewScreener(lists config.ListsConfig, sanctions config.SanctionsConfig) *Screener {
	s := &Screener{
		sanctioned:  lowerAll(lists.SanctionedEntities),
		pepKeywords: lowerAll(lists.PEPKeywords),
		fuzzy:       sanctions.EnableFuzzyMatching,
		maxDistance: sanctions.MaxEditDistance,
	}
	return s
}

// IsSanctioned reports whether the entity name contains any sanctioned
// entity substring, case-insensitively.
func (s *Screener) IsSanctioned(entityName string) bool {
	lower := strings.ToLower(entityName)
	for _, entry := range s.sanctioned {
		if strings.Contains(lower, entry) {
			return true
		}
	}
	return false
}

// SanctionHits returns the parties matching the sanctions list, in
// input order.
func (s *Screener) SanctionHits(parties []string) []string {
	var hits []string
	for _, party := range parties {
		if s.IsSanctioned(party) {
			hits = append(hits, party)
		}
	}
	return hits
}

// NearMatches returns parties within the configured edit distance of a
// sanctioned entity without being an exact hit. Near matches are
// advisory only; they never count as sanction hits. Returns nil when
// fuzzy matching is disabled.
func (s *Screener) NearMatches(parties []string) []string {
	if !s.fuzzy {
		return nil
	}
	var near []string
	for _, party := range parties {
		if s.IsSanctioned(party) {
			continue
		}
		lower := strings.ToLower(party)
		for _, entry := range s.sanctioned {
			if levenshtein.ComputeDistance(lower, entry) <= s.maxDistance {
				near = append(near, party)
				break
			}
		}
	}
	return near
}

// IsPEP reports whether the customer name contains any configured PEP
// keyword, case-insensitively.
func (s *Screener) IsPEP(customerName string) bool {
	lower := strings.ToLower(customerName)
	for _, kw := range s.pepKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToLower(v))
	}
	return out
}
