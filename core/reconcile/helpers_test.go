package reconcile

import (
	"testing"

	"netbox-reconciler/core/netbox/mocks"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	platforms     = "dcim/platforms"
	manufacturers = "dcim/manufacturers"
)

func testKinds() []Kind {
	return []Kind{
		{
			Name:      "manufacturer",
			Endpoint:  manufacturers,
			SlugField: "slug",
			Fields: map[string]FieldType{
				"name":        FieldString,
				"slug":        FieldString,
				"description": FieldString,
			},
		},
		{
			Name:      "platform",
			Endpoint:  platforms,
			SlugField: "slug",
			Fields: map[string]FieldType{
				"name":          FieldString,
				"slug":          FieldString,
				"manufacturer":  FieldReference,
				"napalm_driver": FieldString,
				"napalm_args":   FieldMap,
				"description":   FieldString,
			},
			References: map[string]string{"manufacturer": "manufacturer"},
		},
	}
}

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(testKinds()...)
	require.NoError(t, err)
	return r
}

func newTestEngine(t *testing.T) (*Engine, *mocks.Client) {
	t.Helper()
	client := new(mocks.Client)
	return NewEngine(client, testRegistry(t), zap.NewNop()), client
}

func byName(name string) map[string]string {
	return map[string]string{"name": name}
}
