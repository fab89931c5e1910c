package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	existing := &RemoteObject{ID: 1, Attributes: map[string]any{
		"id":            float64(1),
		"name":          "IOS",
		"slug":          "ios",
		"manufacturer":  3,
		"napalm_args":   map[string]any{"a": float64(1), "b": "x"},
		"napalm_driver": "ios",
	}}

	t.Run("AbsentNoObject", func(t *testing.T) {
		action, delta := Compare(DesiredState{"name": "IOS"}, nil, IntentAbsent)
		assert.Equal(t, ActionNone, action)
		assert.Empty(t, delta)
	})

	t.Run("AbsentWithObject", func(t *testing.T) {
		action, delta := Compare(DesiredState{"name": "IOS"}, existing, IntentAbsent)
		assert.Equal(t, ActionDelete, action)
		assert.Empty(t, delta)
	})

	t.Run("CreateCarriesAllFields", func(t *testing.T) {
		desired := DesiredState{"name": "IOS", "manufacturer": 3}
		action, delta := Compare(desired, nil, IntentPresent)
		assert.Equal(t, ActionCreate, action)
		assert.Equal(t, Delta{"name": "IOS", "manufacturer": 3}, delta)
	})

	t.Run("EqualIgnoresNumericRepresentationAndKeyOrder", func(t *testing.T) {
		desired := DesiredState{
			"name":         "IOS",
			"manufacturer": 3,
			"napalm_args":  map[string]any{"b": "x", "a": 1},
		}
		action, delta := Compare(desired, existing, IntentPresent)
		assert.Equal(t, ActionNone, action)
		assert.Empty(t, delta)
	})

	t.Run("UpdateOnlyMismatches", func(t *testing.T) {
		desired := DesiredState{
			"name":          "IOS",
			"napalm_driver": "junos",
			"napalm_args":   map[string]any{"a": 1},
		}
		action, delta := Compare(desired, existing, IntentPresent)
		assert.Equal(t, ActionUpdate, action)
		assert.Equal(t, []string{"napalm_args", "napalm_driver"}, delta.Keys())
	})

	t.Run("MissingRemoteFieldIsMismatch", func(t *testing.T) {
		action, delta := Compare(DesiredState{"name": "IOS", "description": "core"}, existing, IntentPresent)
		assert.Equal(t, ActionUpdate, action)
		assert.Equal(t, Delta{"description": "core"}, delta)
	})

	t.Run("UnspecifiedFieldsNeverInDelta", func(t *testing.T) {
		action, delta := Compare(DesiredState{"name": "IOS"}, existing, IntentPresent)
		assert.Equal(t, ActionNone, action)
		assert.NotContains(t, delta, "manufacturer")
	})
}

func TestValuesEqual(t *testing.T) {
	assert.True(t, valuesEqual(2, 2.0))
	assert.True(t, valuesEqual(map[string]any{"x": []any{1, 2}}, map[string]any{"x": []any{1.0, 2.0}}))
	assert.False(t, valuesEqual(map[string]any{"x": 1}, map[string]any{"x": 1, "y": 2}))
	assert.False(t, valuesEqual("1", 1))
	assert.False(t, valuesEqual([]any{1, 2}, []any{2, 1}))
}
