package reconcile

import (
	"testing"

	"netbox-reconciler/core/netbox"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		r, err := NewRegistry(testKinds()...)
		require.NoError(t, err)
		assert.Equal(t, []string{"manufacturer", "platform"}, r.Names())

		k, ok := r.Get("platform")
		require.True(t, ok)
		assert.Equal(t, "name", k.NaturalKey)
		assert.Equal(t, []string{"manufacturer"}, k.ReferenceFields())
	})

	t.Run("Duplicate", func(t *testing.T) {
		kinds := testKinds()
		_, err := NewRegistry(append(kinds, kinds[0])...)
		assert.Error(t, err)
	})

	t.Run("UnknownReferenceTarget", func(t *testing.T) {
		_, err := NewRegistry(testKinds()[1])
		assert.ErrorContains(t, err, "unknown kind")
	})

	t.Run("ReferenceWithoutTarget", func(t *testing.T) {
		_, err := NewRegistry(Kind{
			Name:     "platform",
			Endpoint: platforms,
			Fields:   map[string]FieldType{"name": FieldString, "manufacturer": FieldReference},
		})
		assert.Error(t, err)
	})

	t.Run("MissingEndpoint", func(t *testing.T) {
		_, err := NewRegistry(Kind{Name: "x", Fields: map[string]FieldType{"name": FieldString}})
		assert.Error(t, err)
	})

	t.Run("SlugMustBeString", func(t *testing.T) {
		_, err := NewRegistry(Kind{
			Name:      "x",
			Endpoint:  "x/y",
			SlugField: "slug",
			Fields:    map[string]FieldType{"name": FieldString, "slug": FieldInt},
		})
		assert.Error(t, err)
	})

	t.Run("DescriptorsAreCopied", func(t *testing.T) {
		kinds := testKinds()
		r, err := NewRegistry(kinds...)
		require.NoError(t, err)

		kinds[1].Fields["extra"] = FieldString
		k, _ := r.Get("platform")
		assert.NotContains(t, k.Fields, "extra")
	})
}

func TestKind_Normalize(t *testing.T) {
	r := testRegistry(t)
	k, _ := r.Get("platform")

	t.Run("DropsNulls", func(t *testing.T) {
		d, err := k.Normalize(map[string]any{"name": "IOS", "description": nil})
		require.NoError(t, err)
		assert.Equal(t, DesiredState{"name": "IOS"}, d)
	})

	t.Run("CanonicalizesMaps", func(t *testing.T) {
		d, err := k.Normalize(map[string]any{"name": "IOS", "napalm_args": map[string]int{"global_delay_factor": 2}})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"global_delay_factor": float64(2)}, d["napalm_args"])
	})

	t.Run("DoesNotAliasInput", func(t *testing.T) {
		args := map[string]any{"a": 1}
		d, err := k.Normalize(map[string]any{"name": "IOS", "napalm_args": args})
		require.NoError(t, err)
		args["a"] = 2
		assert.Equal(t, float64(1), d["napalm_args"].(map[string]any)["a"])
	})

	t.Run("RejectsFractionalReference", func(t *testing.T) {
		_, err := k.Normalize(map[string]any{"name": "IOS", "manufacturer": 1.5})
		var cfgErr *ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "manufacturer", cfgErr.Field)
	})

	t.Run("SlugFilledOnlyWhenMissing", func(t *testing.T) {
		d := DesiredState{"name": "Cisco IOS-XE 16.x"}
		k.fillSlug(d)
		assert.Equal(t, "cisco-ios-xe-16-x", d["slug"])

		d = DesiredState{"name": "IOS", "slug": "custom"}
		k.fillSlug(d)
		assert.Equal(t, "custom", d["slug"])
	})
}

func TestKind_RemoteFromObject(t *testing.T) {
	r := testRegistry(t)
	k, _ := r.Get("platform")

	remote, err := k.RemoteFromObject(netbox.Object{
		"id":            12,
		"name":          "IOS",
		"manufacturer":  map[string]any{"id": 3, "name": "Cisco", "slug": "cisco"},
		"napalm_driver": map[string]any{"value": "ios", "label": "Cisco IOS"},
		"napalm_args":   map[string]any{"value": 1, "label": "kept"},
	})
	require.NoError(t, err)

	assert.Equal(t, 12, remote.ID)
	assert.Equal(t, 3, remote.Attributes["manufacturer"])
	assert.Equal(t, "ios", remote.Attributes["napalm_driver"])
	assert.Equal(t, map[string]any{"value": float64(1), "label": "kept"}, remote.Attributes["napalm_args"])

	_, err = k.RemoteFromObject(netbox.Object{"name": "IOS"})
	assert.Error(t, err)
}
