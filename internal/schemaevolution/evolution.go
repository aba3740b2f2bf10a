package schemaevolution

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wudi/schemadiff/config"
	"github.com/wudi/schemadiff/internal/errors"
	"github.com/wudi/schemadiff/internal/migration"
	"github.com/wudi/schemadiff/internal/report"
	"github.com/wudi/schemadiff/internal/schema"
	"go.uber.org/zap"
)

// Comparer compares two versions of a schema.
type Comparer interface {
	Compare(old, new *schema.Schema) (*report.CompatibilityReport, error)
}

// Checker compares submitted schema versions against their stored history.
type Checker struct {
	store          *SpecStore
	comparer       Comparer
	mode           string // "warn" or "block"
	failOnBreaking bool
	logger         *zap.Logger
	mu             sync.RWMutex
	evaluations    map[string]*Evaluation
}

// NewChecker creates a new schema history checker.
func NewChecker(cfg config.HistoryConfig, comparer Comparer, logger *zap.Logger) (*Checker, error) {
	mode := cfg.Mode
	if mode == "" {
		mode = "warn"
	}

	storeDir := cfg.StoreDir
	if storeDir == "" {
		storeDir = ".schemadiff/history"
	}

	store, err := NewSpecStore(storeDir, cfg.MaxVersions)
	if err != nil {
		return nil, fmt.Errorf("create schema store: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Checker{
		store:          store,
		comparer:       comparer,
		mode:           mode,
		failOnBreaking: cfg.FailOnBreaking,
		logger:         logger,
		evaluations:    make(map[string]*Evaluation),
	}, nil
}

// Store returns the underlying version store.
func (c *Checker) Store() *SpecStore {
	return c.store
}

// CheckAndStore compares s against the latest stored version of subject,
// then stores s. The first version of a subject is always accepted. In
// block mode an incompatible version, or with fail_on_breaking a breaking
// one, is not stored and a comparison error is returned with the
// evaluation.
func (c *Checker) CheckAndStore(ctx context.Context, subject string, s *schema.Schema) (*Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prev, err := c.store.Latest(subject)
	if err != nil {
		return nil, fmt.Errorf("load previous version of %q: %w", subject, err)
	}

	eval := &Evaluation{
		Subject:    subject,
		Format:     s.Format(),
		NewVersion: s.Version(),
		Timestamp:  time.Now(),
	}

	// Comparing the first version with itself proves it parses.
	old := s
	if prev != nil {
		old = prev.Schema()
		eval.OldVersion = prev.Version
	} else {
		eval.Initial = true
	}

	r, err := c.comparer.Compare(old, s)
	if err != nil {
		return nil, err
	}
	eval.Score = r.Score
	eval.Compatible = r.IsCompatible
	eval.Changes = r.Changes
	eval.Issues = r.Issues
	eval.Breaking = migration.Breaking(r.Changes)

	rejected := c.mode == "block" && (!eval.Compatible || (c.failOnBreaking && eval.Breaking))
	if !rejected {
		if err := c.store.Save(subject, s); err != nil {
			return nil, fmt.Errorf("store version of %q: %w", subject, err)
		}
		eval.Stored = true
	}

	c.mu.Lock()
	c.evaluations[subject] = eval
	c.mu.Unlock()

	c.log(eval)

	if rejected {
		return eval, errors.New(errors.KindComparison, fmt.Sprintf(
			"schema history: version %q of %q rejected (score %d, %d change(s))",
			s.Version(), subject, eval.Score, len(eval.Changes))).WithFormat(string(s.Format()))
	}
	return eval, nil
}

func (c *Checker) log(eval *Evaluation) {
	fields := []zap.Field{
		zap.String("subject", eval.Subject),
		zap.String("format", string(eval.Format)),
		zap.String("old_version", eval.OldVersion),
		zap.String("new_version", eval.NewVersion),
		zap.Uint8("score", eval.Score),
		zap.Bool("stored", eval.Stored),
	}

	if eval.Compatible && !eval.Breaking {
		c.logger.Info("schema history: version accepted", fields...)
		return
	}

	for _, ch := range eval.Changes {
		if !ch.IsBreaking() {
			continue
		}
		c.logger.Warn("schema history: breaking change detected",
			zap.String("subject", eval.Subject),
			zap.String("type", string(ch.Type)),
			zap.String("location", ch.Location),
			zap.String("detail", ch.Description),
		)
	}
	c.logger.Warn("schema history: version not fully compatible", fields...)
}

// GetEvaluation returns the most recent evaluation for a subject.
func (c *Checker) GetEvaluation(subject string) *Evaluation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.evaluations[subject]
}

// GetAllEvaluations returns all evaluations.
func (c *Checker) GetAllEvaluations() map[string]*Evaluation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make(map[string]*Evaluation, len(c.evaluations))
	for k, v := range c.evaluations {
		result[k] = v
	}
	return result
}
