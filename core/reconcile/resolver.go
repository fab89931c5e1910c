package reconcile

import (
	"context"

	"netbox-reconciler/core/netbox"
	"netbox-reconciler/core/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Resolver turns human identifiers in reference fields into remote IDs.
// Identical lookups that are in flight at the same time share one API call;
// nothing is cached once a lookup returns.
type Resolver struct {
	client netbox.Client
	logger *zap.Logger
	sf     singleflight.Group
}

// NewResolver creates a resolver backed by the given client.
func NewResolver(client netbox.Client, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{client: client, logger: logger}
}

// Resolve returns the remote ID of the target-kind object whose natural key equals value.
// Integer values are taken as remote IDs already and returned without a lookup.
func (r *Resolver) Resolve(ctx context.Context, field string, value any, target *Kind) (int, error) {
	if id, ok := utils.AsInt(value); ok {
		return id, nil
	}

	name, ok := value.(string)
	if !ok || name == "" {
		return 0, &ConfigurationError{Field: field, Reason: "reference must be a non-empty name or an id"}
	}

	matches, err := r.lookup(ctx, target, name)
	if err != nil {
		return 0, err
	}

	switch len(matches) {
	case 0:
		return 0, &ReferenceNotFoundError{Field: field, Kind: target.Name, Value: name}
	case 1:
		id, ok := matches[0].ID()
		if !ok {
			return 0, &ReferenceNotFoundError{Field: field, Kind: target.Name, Value: name}
		}
		r.logger.Debug("resolved reference",
			zap.String("field", field),
			zap.String("kind", target.Name),
			zap.String("value", name),
			zap.Int("id", id),
		)
		return id, nil
	default:
		return 0, &AmbiguousReferenceError{Field: field, Kind: target.Name, Value: name, Count: len(matches)}
	}
}

// lookup lists objects of kind whose natural key equals value exactly.
// The shared call is detached from any single caller's cancellation; each
// caller stops waiting when its own context is done.
func (r *Resolver) lookup(ctx context.Context, kind *Kind, value string) ([]netbox.Object, error) {
	shared := context.WithoutCancel(ctx)
	ch := r.sf.DoChan(kind.Endpoint+"|"+kind.NaturalKey+"|"+value, func() (interface{}, error) {
		return r.client.List(shared, kind.Endpoint, map[string]string{kind.NaturalKey: value})
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, &netbox.ConnectionError{Method: "GET", URL: kind.Endpoint, Err: ctx.Err()}
	}
	if res.Err != nil {
		return nil, res.Err
	}

	objects, _ := res.Val.([]netbox.Object)
	matches := make([]netbox.Object, 0, len(objects))
	for _, obj := range objects {
		if utils.ToString(obj[kind.NaturalKey]) == value {
			matches = append(matches, obj)
		}
	}
	return matches, nil
}
