package reconcile

import (
	"fmt"
	"sort"
	"strings"
)

// FieldType is the declared type of a desired-state field.
type FieldType string

const (
	FieldString FieldType = "string"
	FieldInt    FieldType = "int"
	FieldBool   FieldType = "bool"
	FieldMap    FieldType = "map"
	FieldList   FieldType = "list"
	FieldAny    FieldType = "any"

	// FieldReference names an object of another kind (by natural key or remote ID).
	FieldReference FieldType = "reference"
)

// Kind describes a reconcilable resource type.
// Kinds are registered once at start and must be treated as read-only afterwards.
type Kind struct {
	// Name identifies the kind (e.g. "platform").
	Name string

	// Endpoint is the collection path relative to /api/ (e.g. "dcim/platforms").
	Endpoint string

	// NaturalKey is the field used to look objects up. Defaults to "name".
	NaturalKey string

	// SlugField, when set, is filled from the natural key if the desired state omits it.
	SlugField string

	// Fields declares every accepted desired-state field and its type.
	Fields map[string]FieldType

	// References maps reference fields to the kind they resolve against.
	References map[string]string
}

// ReferenceFields returns the declared reference fields in sorted order.
func (k *Kind) ReferenceFields() []string {
	fields := make([]string, 0, len(k.References))
	for f := range k.References {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// FieldNames returns the declared fields in sorted order.
func (k *Kind) FieldNames() []string {
	fields := make([]string, 0, len(k.Fields))
	for f := range k.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

func (k *Kind) validate() error {
	if k.Name == "" {
		return fmt.Errorf("kind name is required")
	}
	if strings.Trim(k.Endpoint, "/") == "" {
		return fmt.Errorf("kind %s: endpoint is required", k.Name)
	}
	if _, ok := k.Fields[k.NaturalKey]; !ok {
		return fmt.Errorf("kind %s: natural key %q is not a declared field", k.Name, k.NaturalKey)
	}
	if k.SlugField != "" {
		if t, ok := k.Fields[k.SlugField]; !ok || t != FieldString {
			return fmt.Errorf("kind %s: slug field %q must be a declared string field", k.Name, k.SlugField)
		}
	}
	for field := range k.References {
		if k.Fields[field] != FieldReference {
			return fmt.Errorf("kind %s: reference %q must be declared as a reference field", k.Name, field)
		}
	}
	for field, t := range k.Fields {
		if t == FieldReference {
			if _, ok := k.References[field]; !ok {
				return fmt.Errorf("kind %s: reference field %q has no target kind", k.Name, field)
			}
		}
	}
	return nil
}

// clone returns a deep copy so the registry owns its descriptors.
func (k Kind) clone() *Kind {
	c := k
	c.Fields = make(map[string]FieldType, len(k.Fields))
	for f, t := range k.Fields {
		c.Fields[f] = t
	}
	c.References = make(map[string]string, len(k.References))
	for f, target := range k.References {
		c.References[f] = target
	}
	return &c
}

// Registry is the process-wide table of kinds.
type Registry struct {
	kinds map[string]*Kind
}

// NewRegistry validates the kinds and builds a registry.
// Every reference must target a kind present in the same registry.
func NewRegistry(kinds ...Kind) (*Registry, error) {
	r := &Registry{kinds: make(map[string]*Kind, len(kinds))}

	for _, k := range kinds {
		c := k.clone()
		if c.NaturalKey == "" {
			c.NaturalKey = "name"
		}
		if err := c.validate(); err != nil {
			return nil, err
		}
		if _, dup := r.kinds[c.Name]; dup {
			return nil, fmt.Errorf("kind %s registered twice", c.Name)
		}
		r.kinds[c.Name] = c
	}

	for _, k := range r.kinds {
		for field, target := range k.References {
			if _, ok := r.kinds[target]; !ok {
				return nil, fmt.Errorf("kind %s: reference %q targets unknown kind %q", k.Name, field, target)
			}
		}
	}
	return r, nil
}

// Get returns the kind registered under name.
func (r *Registry) Get(name string) (*Kind, bool) {
	k, ok := r.kinds[name]
	return k, ok
}

// Names returns the registered kind names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
