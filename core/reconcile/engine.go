package reconcile

import (
	"context"
	"fmt"

	"netbox-reconciler/core/netbox"
	"netbox-reconciler/core/utils"

	"go.uber.org/zap"
)

// Engine reconciles one object per call against NetBox.
// It is safe for concurrent use; calls share only the API client.
type Engine struct {
	client   netbox.Client
	registry *Registry
	resolver *Resolver
	logger   *zap.Logger
}

// NewEngine creates an engine for the kinds in registry.
func NewEngine(client netbox.Client, registry *Registry, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		client:   client,
		registry: registry,
		resolver: NewResolver(client, logger),
		logger:   logger,
	}
}

// Registry returns the kinds the engine knows about.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Run reconciles a single request: resolve, fetch, compare and (unless dry-run) apply.
// Failures never escape as Go errors; they are reported on the returned Outcome.
func (e *Engine) Run(ctx context.Context, req Request) *Outcome {
	outcome := &Outcome{
		Kind:   req.Kind,
		DryRun: req.DryRun,
		Action: ActionNone,
		Stage:  StageStart,
	}

	kind, ok := e.registry.Get(req.Kind)
	if !ok {
		return e.fail(outcome, StageStart, &ConfigurationError{Field: "kind", Reason: fmt.Sprintf("unknown resource kind %q", req.Kind)})
	}
	outcome.Key = keyOf(kind, req.Data)

	intent, err := ParseIntent(req.State)
	if err != nil {
		return e.fail(outcome, StageStart, err)
	}
	outcome.Intent = intent

	plan, err := e.Plan(ctx, kind, req.Data, intent)
	if err != nil {
		return e.fail(outcome, StageStart, err)
	}

	return e.Apply(ctx, plan, Options{DryRun: req.DryRun})
}

// Plan runs the read-only stages (start, resolving, fetching, comparing) and
// returns the decided action. The returned error is always a *Failure.
func (e *Engine) Plan(ctx context.Context, kind *Kind, data map[string]any, intent Intent) (*Plan, error) {
	log := e.logger.With(zap.String("kind", kind.Name))

	desired, err := kind.Normalize(data)
	if err != nil {
		return nil, newFailure(StageStart, err)
	}
	key := desired[kind.NaturalKey].(string)
	log = log.With(zap.String("key", key))

	log.Debug("stage transition", zap.String("stage", string(StageResolving)))
	for _, field := range kind.ReferenceFields() {
		value, ok := desired[field]
		if !ok {
			continue
		}
		target, _ := e.registry.Get(kind.References[field])
		id, err := e.resolver.Resolve(ctx, field, value, target)
		if err != nil {
			return nil, newFailure(StageResolving, err)
		}
		desired[field] = id
	}

	log.Debug("stage transition", zap.String("stage", string(StageFetching)))
	existing, err := e.fetch(ctx, kind, key)
	if err != nil {
		return nil, newFailure(StageFetching, err)
	}

	log.Debug("stage transition", zap.String("stage", string(StageComparing)))
	if existing == nil && intent == IntentPresent {
		kind.fillSlug(desired)
	}
	action, delta := Compare(desired, existing, intent)

	log.Debug("planned action",
		zap.String("action", string(action)),
		zap.Strings("delta", delta.Keys()),
	)

	return &Plan{
		Kind:     kind,
		Intent:   intent,
		Key:      key,
		Desired:  desired,
		Existing: existing,
		Action:   action,
		Delta:    delta,
	}, nil
}

// fetch returns the object whose natural key equals key, or nil.
func (e *Engine) fetch(ctx context.Context, kind *Kind, key string) (*RemoteObject, error) {
	objects, err := e.resolver.lookup(ctx, kind, key)
	if err != nil {
		return nil, err
	}
	switch len(objects) {
	case 0:
		return nil, nil
	case 1:
		return kind.RemoteFromObject(objects[0])
	default:
		return nil, &DuplicateObjectError{Kind: kind.Name, Key: kind.NaturalKey, Value: key, Count: len(objects)}
	}
}

// Apply executes the plan's action. In dry-run mode no mutating call is made
// and the resulting object is simulated.
func (e *Engine) Apply(ctx context.Context, plan *Plan, opts Options) *Outcome {
	outcome := &Outcome{
		Kind:    plan.Kind.Name,
		Key:     plan.Key,
		Intent:  plan.Intent,
		DryRun:  opts.DryRun,
		Action:  plan.Action,
		Changed: plan.Action != ActionNone,
		Stage:   StageComparing,
	}
	log := e.logger.With(
		zap.String("kind", plan.Kind.Name),
		zap.String("key", plan.Key),
		zap.String("action", string(plan.Action)),
		zap.Bool("dry_run", opts.DryRun),
	)

	if plan.Action == ActionNone {
		if plan.Existing != nil {
			outcome.Object = plan.Existing.Attributes
		}
		outcome.Stage = StageDone
		log.Info("object already in desired state")
		return outcome
	}

	outcome.Diff = buildDiff(plan)

	if opts.DryRun {
		outcome.Object = simulate(plan)
		outcome.Stage = StageDone
		log.Info("dry-run, skipping remote call")
		return outcome
	}

	log.Debug("stage transition", zap.String("stage", string(StageApplying)))
	outcome.Stage = StageApplying

	endpoint := plan.Kind.Endpoint
	switch plan.Action {
	case ActionCreate:
		obj, err := e.client.Create(ctx, endpoint, plan.Delta)
		if err != nil {
			return e.fail(outcome, StageApplying, err)
		}
		outcome.Object = e.snapshot(plan.Kind, obj, simulate(plan))
	case ActionUpdate:
		obj, err := e.client.Update(ctx, endpoint, plan.Existing.ID, plan.Delta)
		if err != nil {
			return e.fail(outcome, StageApplying, err)
		}
		outcome.Object = e.snapshot(plan.Kind, obj, simulate(plan))
	case ActionDelete:
		if err := e.client.Delete(ctx, endpoint, plan.Existing.ID); err != nil {
			return e.fail(outcome, StageApplying, err)
		}
		outcome.Object = nil
	}

	outcome.Stage = StageDone
	log.Info("object reconciled", zap.Strings("fields", plan.Delta.Keys()))
	return outcome
}

// snapshot normalizes the object returned by a mutating call. When the API
// answers with an empty body the simulated object is used instead.
func (e *Engine) snapshot(kind *Kind, obj netbox.Object, fallback map[string]any) map[string]any {
	if len(obj) == 0 {
		return fallback
	}
	remote, err := kind.RemoteFromObject(obj)
	if err != nil {
		e.logger.Warn("unexpected object returned by API", zap.String("kind", kind.Name), zap.Error(err))
		return fallback
	}
	return remote.Attributes
}

// simulate predicts the object that the plan's action would produce.
func simulate(plan *Plan) map[string]any {
	switch plan.Action {
	case ActionCreate:
		obj := make(map[string]any, len(plan.Desired))
		for k, v := range plan.Desired {
			obj[k] = v
		}
		return obj
	case ActionUpdate:
		obj := make(map[string]any, len(plan.Existing.Attributes)+len(plan.Delta))
		for k, v := range plan.Existing.Attributes {
			obj[k] = v
		}
		for k, v := range plan.Delta {
			obj[k] = v
		}
		return obj
	default:
		return nil
	}
}

func buildDiff(plan *Plan) *Diff {
	switch plan.Action {
	case ActionCreate:
		return &Diff{Before: map[string]any{}, After: simulate(plan)}
	case ActionDelete:
		return &Diff{Before: plan.Existing.Attributes, After: map[string]any{}}
	case ActionUpdate:
		before := make(map[string]any, len(plan.Delta))
		after := make(map[string]any, len(plan.Delta))
		for field, value := range plan.Delta {
			before[field] = plan.Existing.Attributes[field]
			after[field] = value
		}
		return &Diff{Before: before, After: after}
	default:
		return nil
	}
}

func (e *Engine) fail(outcome *Outcome, stage Stage, err error) *Outcome {
	f := newFailure(stage, err)
	outcome.Stage = StageFailed
	outcome.Failure = f
	outcome.Changed = false
	if f.MutationAttempted {
		// the remote effect is unknown; keep the attempted action for the report
		outcome.Object = nil
	} else {
		outcome.Action = ActionNone
	}

	e.logger.Error("reconciliation failed",
		zap.String("kind", outcome.Kind),
		zap.String("key", outcome.Key),
		zap.String("stage", string(f.Stage)),
		zap.String("code", string(f.Code)),
		zap.Int("status_code", f.StatusCode),
		zap.Bool("mutation_attempted", f.MutationAttempted),
		zap.Error(err),
	)
	return outcome
}

// keyOf extracts the natural key from raw data for error reporting.
func keyOf(kind *Kind, data map[string]any) string {
	v, ok := data[kind.NaturalKey]
	if !ok || v == nil {
		return ""
	}
	return utils.ToString(v)
}
