package screening

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Stage names a node in the screening graph.
type Stage string

const (
	StageInitialScreening Stage = "initial_screening"
	StageCryptoAnalysis   Stage = "crypto_analysis"
	StageGeoAnalysis      Stage = "geo_analysis"
	StageDocumentCheck    Stage = "document_check"
	StageBehaviorCheck    Stage = "behavior_check"
	StageSanctionsCheck   Stage = "sanctions_check"
	StagePEPCheck         Stage = "pep_check"
	StageEDD              Stage = "edd"
	StageScoreRisk        Stage = "score_risk"
	StageGenerateSAR      Stage = "generate_sar"
	StageHumanReview      Stage = "human_review"
)

// RouteLabel is the output of a routing predicate at a conditional node.
type RouteLabel string

const (
	LabelCryptoTransaction RouteLabel = "CRYPTO_TRANSACTION"
	LabelLargeTransaction  RouteLabel = "LARGE_TRANSACTION"
	LabelNewAccount        RouteLabel = "NEW_ACCOUNT"
	LabelStandardFlow      RouteLabel = "STANDARD_FLOW"
	LabelHighRiskCrypto    RouteLabel = "HIGH_RISK_CRYPTO"
	LabelNormalCrypto      RouteLabel = "NORMAL_CRYPTO"
	LabelSanctionHit       RouteLabel = "SANCTION_HIT"
	LabelNoHit             RouteLabel = "NO_HIT"
	LabelPEPFound          RouteLabel = "PEP_FOUND"
	LabelNoPEP             RouteLabel = "NO_PEP"
	LabelHighRisk          RouteLabel = "HIGH_RISK"
	LabelLowRisk           RouteLabel = "LOW_RISK"
)

// Handler runs one screening stage. It consumes a state snapshot and
// returns a derived snapshot; it must not mutate its input.
type Handler func(ctx context.Context, s *State) (*State, error)

// ConfigurationError marks a defect in the graph definition. It is a
// construction-time failure, never a per-transaction one: NewEngine
// validates the full transition table before any run executes.
type ConfigurationError struct {
	Stage  Stage
	Label  RouteLabel
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("screening graph misconfigured at %s: label %s: %s", e.Stage, e.Label, e.Reason)
	}
	return fmt.Sprintf("screening graph misconfigured at %s: %s", e.Stage, e.Reason)
}

// router is a conditional edge set: a predicate over the state plus the
// complete label-to-successor table it may produce.
type router struct {
	eval  func(*State) RouteLabel
	edges map[RouteLabel]Stage
}

// node is one entry in the stage registry. Exactly one of next, route
// or terminal describes its outgoing edges.
type node struct {
	handler  Handler
	next     Stage
	route    *router
	terminal bool
}

// Engine executes the screening graph: a fixed set of named stages with
// unconditional or predicate-routed edges, validated complete and
// acyclic at construction. Execution is strictly sequential per run;
// distinct runs share nothing but the engine itself.
type Engine struct {
	entry  Stage
	nodes  map[Stage]*node
	logger *zap.Logger
}

func newEngine(entry Stage, nodes map[Stage]*node, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{entry: entry, nodes: nodes, logger: logger}
	if err := e.validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// validate checks the transition table: every edge lands on a known
// stage, every stage is reachable from the entry, and no path loops.
func (e *Engine) validate() error {
	if _, ok := e.nodes[e.entry]; !ok {
		return &ConfigurationError{Stage: e.entry, Reason: "entry stage not registered"}
	}

	for name, n := range e.nodes {
		if n.handler == nil {
			return &ConfigurationError{Stage: name, Reason: "missing handler"}
		}
		switch {
		case n.terminal:
			if n.next != "" || n.route != nil {
				return &ConfigurationError{Stage: name, Reason: "terminal stage has outgoing edges"}
			}
		case n.route != nil:
			if n.next != "" {
				return &ConfigurationError{Stage: name, Reason: "both unconditional and conditional edges"}
			}
			if len(n.route.edges) == 0 {
				return &ConfigurationError{Stage: name, Reason: "conditional stage has no edges"}
			}
			for label, target := range n.route.edges {
				if _, ok := e.nodes[target]; !ok {
					return &ConfigurationError{Stage: name, Label: label, Reason: fmt.Sprintf("edge targets unknown stage %s", target)}
				}
			}
		case n.next != "":
			if _, ok := e.nodes[n.next]; !ok {
				return &ConfigurationError{Stage: name, Reason: fmt.Sprintf("edge targets unknown stage %s", n.next)}
			}
		default:
			return &ConfigurationError{Stage: name, Reason: "non-terminal stage has no outgoing edge"}
		}
	}

	if err := e.checkReachability(); err != nil {
		return err
	}
	return e.checkAcyclic()
}

func (e *Engine) successors(name Stage) []Stage {
	n := e.nodes[name]
	if n.terminal {
		return nil
	}
	if n.route != nil {
		out := make([]Stage, 0, len(n.route.edges))
		for _, target := range n.route.edges {
			out = append(out, target)
		}
		return out
	}
	return []Stage{n.next}
}

func (e *Engine) checkReachability() error {
	reached := map[Stage]bool{e.entry: true}
	queue := []Stage{e.entry}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range e.successors(cur) {
			if !reached[next] {
				reached[next] = true
				queue = append(queue, next)
			}
		}
	}
	for name := range e.nodes {
		if !reached[name] {
			return &ConfigurationError{Stage: name, Reason: "unreachable from entry"}
		}
	}
	return nil
}

func (e *Engine) checkAcyclic() error {
	const (
		unvisited = iota
		inProgress
		done
	)
	color := make(map[Stage]int, len(e.nodes))
	var visit func(Stage) error
	visit = func(name Stage) error {
		color[name] = inProgress
		for _, next := range e.successors(name) {
			switch color[next] {
			case inProgress:
				return &ConfigurationError{Stage: name, Reason: fmt.Sprintf("cycle through %s", next)}
			case unvisited:
				if err := visit(next); err != nil {
					return err
				}
			}
		}
		color[name] = done
		return nil
	}
	for name := range e.nodes {
		if color[name] == unvisited {
			if err := visit(name); err != nil {
				return err
			}
		}
	}
	return nil
}

// Run executes one screening run to a terminal stage. Each stage is
// entered exactly once: its name is appended to the decision path, its
// handler derives the next state snapshot, and the routing table picks
// the successor. Cancellation is honored between stages; handlers are
// not interrupted mid-computation.
func (e *Engine) Run(ctx context.Context, initial *State) (*State, error) {
	current := e.entry
	s := initial
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("screening run cancelled before %s: %w", current, err)
		}

		n := e.nodes[current]
		s = s.withPath(current)

		next, err := n.handler(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("stage %s failed: %w", current, err)
		}
		s = next

		if n.terminal {
			return s, nil
		}

		if n.route != nil {
			label := n.route.eval(s)
			target, ok := n.route.edges[label]
			if !ok {
				return nil, &ConfigurationError{Stage: current, Label: label, Reason: "no successor mapped"}
			}
			e.logger.Debug("routing decision",
				zap.String("stage", string(current)),
				zap.String("label", string(label)),
				zap.String("next", string(target)))
			current = target
			continue
		}
		current = n.next
	}
}

// Entry returns the graph's entry stage.
func (e *Engine) Entry() Stage {
	return e.entry
}

// Stages returns the names of all registered stages.
func (e *Engine) Stages() []Stage {
	out := make([]Stage, 0, len(e.nodes))
	for name := range e.nodes {
		out = append(out, name)
	}
	return out
}
