package inventory

import (
	"context"
	"sort"
	"time"

	"netbox-reconciler/core/journal"
	"netbox-reconciler/core/reconcile"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sources recorded in the journal.
const (
	SourceCLI  = "cli"
	SourceHTTP = "http"
)

// Journal stores and lists reconciliation runs.
type Journal interface {
	Record(ctx context.Context, run *journal.Run) error
	Recent(ctx context.Context, filter journal.Filter) ([]journal.Run, error)
	Get(ctx context.Context, id string) (*journal.Run, error)
}

// ReportStore archives full results.
type ReportStore interface {
	Store(ctx context.Context, kind, id string, report any) (string, error)
}

// Response is a reconciliation result together with its run ID.
type Response struct {
	RunID string `json:"run_id"`
	reconcile.Result
	ReportKey string `json:"report_key,omitempty"`
}

// KindInfo describes a registered kind for listings.
type KindInfo struct {
	Name       string            `json:"name"`
	Endpoint   string            `json:"endpoint"`
	NaturalKey string            `json:"natural_key"`
	SlugField  string            `json:"slug_field,omitempty"`
	Fields     map[string]string `json:"fields"`
	References map[string]string `json:"references,omitempty"`
}

// Service runs reconciliations and keeps their records.
// The journal and the report store are optional.
type Service struct {
	engine  *reconcile.Engine
	journal Journal
	reports ReportStore
	logger  *zap.Logger
	now     func() time.Time
}

// NewService creates a new inventory service. journal and reports may be nil.
func NewService(engine *reconcile.Engine, journal Journal, reports ReportStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		engine:  engine,
		journal: journal,
		reports: reports,
		logger:  logger,
		now:     time.Now,
	}
}

// Reconcile runs one request. Journal and archive failures are logged and do
// not change the result.
func (s *Service) Reconcile(ctx context.Context, req reconcile.Request, source string) Response {
	runID := uuid.NewString()
	started := s.now()

	outcome := s.engine.Run(ctx, req)
	result := reconcile.Report(outcome)

	resp := Response{RunID: runID, Result: result}
	log := s.logger.With(zap.String("run_id", runID), zap.String("kind", req.Kind))

	if s.reports != nil {
		// the archive is written even when the caller's context is done
		key, err := s.reports.Store(context.WithoutCancel(ctx), req.Kind, runID, resp)
		if err != nil {
			log.Warn("Failed to archive report", zap.Error(err))
		} else {
			resp.ReportKey = key
		}
	}

	if s.journal != nil {
		run := &journal.Run{
			ID:         runID,
			Kind:       req.Kind,
			Key:        outcome.Key,
			Intent:     string(outcome.Intent),
			Action:     result.Action,
			Changed:    result.Changed,
			CheckMode:  result.CheckMode,
			Stage:      string(result.Stage),
			Message:    result.Message,
			Source:     source,
			ReportKey:  resp.ReportKey,
			StartedAt:  started.UTC(),
			DurationMs: s.now().Sub(started).Milliseconds(),
		}
		if result.Error != nil {
			run.ErrorCode = string(result.Error.Code)
		}
		if err := s.journal.Record(context.WithoutCancel(ctx), run); err != nil {
			log.Warn("Failed to record run", zap.Error(err))
		}
	}

	return resp
}

// Kinds describes the registered kinds, sorted by name.
func (s *Service) Kinds() []KindInfo {
	registry := s.engine.Registry()
	names := registry.Names()

	infos := make([]KindInfo, 0, len(names))
	for _, name := range names {
		k, _ := registry.Get(name)
		fields := make(map[string]string, len(k.Fields))
		for f, t := range k.Fields {
			fields[f] = string(t)
		}
		info := KindInfo{
			Name:       k.Name,
			Endpoint:   k.Endpoint,
			NaturalKey: k.NaturalKey,
			SlugField:  k.SlugField,
			Fields:     fields,
		}
		if len(k.References) > 0 {
			info.References = make(map[string]string, len(k.References))
			for f, target := range k.References {
				info.References[f] = target
			}
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Runs lists recorded runs. It returns nil when the journal is disabled.
func (s *Service) Runs(ctx context.Context, filter journal.Filter) ([]journal.Run, error) {
	if s.journal == nil {
		return nil, nil
	}
	return s.journal.Recent(ctx, filter)
}

// Run returns a recorded run.
func (s *Service) Run(ctx context.Context, id string) (*journal.Run, error) {
	if s.journal == nil {
		return nil, journal.ErrNotFound
	}
	return s.journal.Get(ctx, id)
}

// JournalEnabled reports whether runs are recorded.
func (s *Service) JournalEnabled() bool {
	return s.journal != nil
}
