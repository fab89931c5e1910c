package reconcile

import (
	"encoding/json"
	"reflect"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// Compare decides the action that moves existing towards desired.
//
// Only fields present in desired are considered: fields the caller did not
// mention are never part of the delta, whatever their remote value.
// existing is nil when no remote object matches the natural key.
func Compare(desired DesiredState, existing *RemoteObject, intent Intent) (ActionType, Delta) {
	if intent == IntentAbsent {
		if existing == nil {
			return ActionNone, Delta{}
		}
		return ActionDelete, Delta{}
	}

	if existing == nil {
		delta := make(Delta, len(desired))
		for field, value := range desired {
			delta[field] = value
		}
		return ActionCreate, delta
	}

	delta := Delta{}
	for field, want := range desired {
		have, ok := existing.Attributes[field]
		if ok && valuesEqual(want, have) {
			continue
		}
		delta[field] = want
	}

	if len(delta) == 0 {
		return ActionNone, delta
	}
	return ActionUpdate, delta
}

// valuesEqual compares two values by their JSON meaning: 2 and 2.0 are equal,
// and mappings are compared structurally regardless of key order.
func valuesEqual(a, b any) bool {
	ca, errA := canonical(a)
	cb, errB := canonical(b)
	if errA != nil || errB != nil {
		return reflect.DeepEqual(a, b)
	}

	_, aIsMap := ca.(map[string]any)
	_, bIsMap := cb.(map[string]any)
	if aIsMap && bIsMap {
		da, _ := json.Marshal(ca)
		db, _ := json.Marshal(cb)
		return jsonpatch.Equal(da, db)
	}
	return reflect.DeepEqual(ca, cb)
}
