package inventory

import (
	"netbox-reconciler/core/reconcile"
)

// Kinds returns the resource kinds served by the reconciler.
func Kinds() []reconcile.Kind {
	return []reconcile.Kind{
		{
			Name:      "manufacturer",
			Endpoint:  "dcim/manufacturers",
			SlugField: "slug",
			Fields: map[string]reconcile.FieldType{
				"name":        reconcile.FieldString,
				"slug":        reconcile.FieldString,
				"description": reconcile.FieldString,
			},
		},
		{
			Name:      "platform",
			Endpoint:  "dcim/platforms",
			SlugField: "slug",
			Fields: map[string]reconcile.FieldType{
				"name":          reconcile.FieldString,
				"slug":          reconcile.FieldString,
				"manufacturer":  reconcile.FieldReference,
				"napalm_driver": reconcile.FieldString,
				"napalm_args":   reconcile.FieldMap,
				"description":   reconcile.FieldString,
			},
			References: map[string]string{
				"manufacturer": "manufacturer",
			},
		},
		{
			Name:      "tenant",
			Endpoint:  "tenancy/tenants",
			SlugField: "slug",
			Fields: map[string]reconcile.FieldType{
				"name":        reconcile.FieldString,
				"slug":        reconcile.FieldString,
				"description": reconcile.FieldString,
				"comments":    reconcile.FieldString,
			},
		},
		{
			Name:      "site",
			Endpoint:  "dcim/sites",
			SlugField: "slug",
			Fields: map[string]reconcile.FieldType{
				"name":             reconcile.FieldString,
				"slug":             reconcile.FieldString,
				"status":           reconcile.FieldString,
				"tenant":           reconcile.FieldReference,
				"facility":         reconcile.FieldString,
				"time_zone":        reconcile.FieldString,
				"physical_address": reconcile.FieldString,
				"description":      reconcile.FieldString,
				"comments":         reconcile.FieldString,
			},
			References: map[string]string{
				"tenant": "tenant",
			},
		},
		{
			Name:      "device_role",
			Endpoint:  "dcim/device-roles",
			SlugField: "slug",
			Fields: map[string]reconcile.FieldType{
				"name":        reconcile.FieldString,
				"slug":        reconcile.FieldString,
				"color":       reconcile.FieldString,
				"vm_role":     reconcile.FieldBool,
				"description": reconcile.FieldString,
			},
		},
		{
			Name:       "device_type",
			Endpoint:   "dcim/device-types",
			NaturalKey: "model",
			SlugField:  "slug",
			Fields: map[string]reconcile.FieldType{
				"model":         reconcile.FieldString,
				"slug":          reconcile.FieldString,
				"manufacturer":  reconcile.FieldReference,
				"part_number":   reconcile.FieldString,
				"u_height":      reconcile.FieldInt,
				"is_full_depth": reconcile.FieldBool,
				"comments":      reconcile.FieldString,
			},
			References: map[string]string{
				"manufacturer": "manufacturer",
			},
		},
	}
}

// NewRegistry builds the registry of every kind returned by Kinds.
func NewRegistry() (*reconcile.Registry, error) {
	return reconcile.NewRegistry(Kinds()...)
}
