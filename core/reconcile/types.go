package reconcile

import (
	"fmt"
	"sort"
	"strings"
)

// Intent is the caller's declared goal for the object.
type Intent string

const (
	// IntentPresent ensures the object exists and matches the desired fields.
	IntentPresent Intent = "present"
	// IntentAbsent ensures the object does not exist.
	IntentAbsent Intent = "absent"
)

// ParseIntent validates an intent string. An empty string means present.
func ParseIntent(s string) (Intent, error) {
	switch Intent(strings.ToLower(strings.TrimSpace(s))) {
	case "", IntentPresent:
		return IntentPresent, nil
	case IntentAbsent:
		return IntentAbsent, nil
	default:
		return "", &ConfigurationError{Field: "state", Reason: fmt.Sprintf("invalid value %q, expected present or absent", s)}
	}
}

// ActionType represents the mutation the comparator decided on.
type ActionType string

const (
	// ActionNone means the remote object already satisfies the desired state.
	ActionNone ActionType = "none"
	// ActionCreate creates the object.
	ActionCreate ActionType = "create"
	// ActionUpdate patches the fields listed in the Delta.
	ActionUpdate ActionType = "update"
	// ActionDelete removes the object.
	ActionDelete ActionType = "delete"
)

// Past returns the past-tense label used in results ("created", "updated", ...).
func (a ActionType) Past() string {
	switch a {
	case ActionCreate:
		return "created"
	case ActionUpdate:
		return "updated"
	case ActionDelete:
		return "deleted"
	default:
		return "none"
	}
}

// Stage is a state of the reconciliation state machine.
type Stage string

const (
	StageStart     Stage = "start"
	StageResolving Stage = "resolving"
	StageFetching  Stage = "fetching"
	StageComparing Stage = "comparing"
	StageApplying  Stage = "applying"
	StageDone      Stage = "done"
	StageFailed    Stage = "failed"
)

// DesiredState is the caller-supplied description of the object, keyed by field name.
type DesiredState map[string]any

// Delta holds the fields (and desired values) that differ from the remote object.
type Delta map[string]any

// Keys returns the delta's field names in sorted order.
func (d Delta) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RemoteObject is an object as NetBox reports it, with references flattened to IDs.
type RemoteObject struct {
	// ID is the remote identifier.
	ID int `json:"id"`

	// Attributes holds every field returned by the API, including "id".
	Attributes map[string]any `json:"attributes"`
}

// Options controls how a plan is applied.
type Options struct {
	// DryRun computes and reports the action without calling any mutating endpoint.
	DryRun bool
}

// Request is a single reconciliation call.
type Request struct {
	// Kind is the registered resource kind name (e.g. "platform").
	Kind string

	// Data is the raw desired state.
	Data map[string]any

	// State is "present" or "absent"; empty means present.
	State string

	// DryRun enables check mode.
	DryRun bool
}

// Plan is the outcome of the read-only half of a reconciliation:
// normalized and resolved desired state, the existing object and the decided action.
type Plan struct {
	// Kind is the descriptor the plan was built for.
	Kind *Kind

	// Intent is the validated intent.
	Intent Intent

	// Key is the natural key value of the target object.
	Key string

	// Desired is the normalized desired state with references replaced by remote IDs.
	Desired DesiredState

	// Existing is the matching remote object, or nil when absent.
	Existing *RemoteObject

	// Action is the mutation to perform.
	Action ActionType

	// Delta contains the fields to send for ActionUpdate, or every desired field for ActionCreate.
	Delta Delta
}

// Diff shows the touched fields before and after the change.
type Diff struct {
	Before map[string]any `json:"before"`
	After  map[string]any `json:"after"`
}

// Outcome is what a reconciliation call produced.
// It is returned to the caller and never persisted by the engine.
type Outcome struct {
	// Kind is the resource kind name.
	Kind string

	// Key is the natural key value, when known.
	Key string

	// Intent is the requested intent.
	Intent Intent

	// DryRun reports whether the call ran in check mode.
	DryRun bool

	// Action is the action taken (or that would have been taken in dry-run).
	Action ActionType

	// Changed is true whenever Action is not ActionNone.
	Changed bool

	// Object is the resulting object snapshot; nil after a delete or when absent.
	Object map[string]any

	// Diff describes the change, nil when nothing changed.
	Diff *Diff

	// Stage is the terminal stage: StageDone or StageFailed.
	Stage Stage

	// Failure is set when Stage is StageFailed.
	Failure *Failure
}
