package screening

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Aidin1998/amlguard/internal/annotator"
	"github.com/Aidin1998/amlguard/internal/casestore"
	"github.com/Aidin1998/amlguard/internal/config"
	"github.com/Aidin1998/amlguard/internal/model"
	"github.com/Aidin1998/amlguard/internal/watchlist"
)

// Service runs screenings end to end: input validation, graph
// execution, metrics, and disposition persistence. One Service handles
// any number of concurrent runs; runs share only the immutable
// configuration and the engine.
type Service struct {
	cfg     *config.Config
	engine  *Engine
	stages  *Stages
	metrics *Metrics
	store   casestore.Store
	logger  *zap.Logger
}

// NewService wires the screening pipeline. The annotator is wrapped
// with the configured timeout/retry budget; pass nil metrics or store
// to disable those concerns.
func NewService(cfg *config.Config, ann annotator.Annotator, store casestore.Store, metrics *Metrics, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	screener := watchlist.NewScreener(cfg.Lists, cfg.Sanctions)
	bounded := annotator.NewResilient(ann, cfg.Annotator.Timeout, cfg.Annotator.MaxAttempts, logger.Named("annotator"))
	stages := NewStages(cfg, screener, bounded, metrics, logger.Named("stages"))

	engine, err := NewEngine(stages, logger.Named("engine"))
	if err != nil {
		return nil, fmt.Errorf("building screening engine: %w", err)
	}

	return &Service{
		cfg:     cfg,
		engine:  engine,
		stages:  stages,
		metrics: metrics,
		store:   store,
		logger:  logger,
	}, nil
}

// Stages exposes the handler set for test wiring (clock and case ID
// overrides).
func (s *Service) Stages() *Stages {
	return s.stages
}

// Screen validates the inputs and runs one screening to its terminal
// disposition. Validation failures reject the run before it enters the
// graph; no partial state is produced.
func (s *Service) Screen(ctx context.Context, tx *model.Transaction, customer *model.Customer) (*State, error) {
	if err := tx.Validate(); err != nil {
		s.metrics.ValidationFailure()
		return nil, fmt.Errorf("transaction rejected: %w", err)
	}
	if err := customer.Validate(); err != nil {
		s.metrics.ValidationFailure()
		return nil, fmt.Errorf("customer rejected: %w", err)
	}

	started := time.Now()
	terminal, err := s.engine.Run(ctx, NewState(tx, customer))
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(started)

	s.metrics.RunCompleted(terminal.ReportingStatus, elapsed)
	s.logger.Info("screening completed",
		zap.String("transaction_id", tx.ID),
		zap.String("disposition", string(terminal.ReportingStatus)),
		zap.Int("risk_score", terminal.RiskScore),
		zap.Int("path_length", len(terminal.DecisionPath)),
		zap.Duration("elapsed", elapsed))

	if s.store != nil {
		if err := s.store.Save(ctx, recordFromState(terminal)); err != nil {
			// Persistence is best-effort here; the disposition itself
			// is returned to the caller regardless.
			s.logger.Error("failed to persist case record",
				zap.String("transaction_id", tx.ID), zap.Error(err))
		}
	}

	return terminal, nil
}

func recordFromState(terminal *State) casestore.Record {
	path := make([]string, len(terminal.DecisionPath))
	for i, stage := range terminal.DecisionPath {
		path[i] = string(stage)
	}
	return casestore.Record{
		CaseID:         terminal.CaseID,
		TransactionID:  terminal.Transaction.ID,
		CustomerName:   terminal.Customer.Name,
		Disposition:    string(terminal.ReportingStatus),
		RiskScore:      terminal.RiskScore,
		DecisionPath:   path,
		FiledAt:        terminal.FiledAt,
		ReviewDeadline: terminal.ReviewDeadline,
		CreatedAt:      time.Now(),
	}
}
