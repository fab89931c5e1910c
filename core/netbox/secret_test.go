package netbox_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"netbox-reconciler/core/netbox"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecret_NeverPrints(t *testing.T) {
	cfg := netbox.Config{URL: "https://netbox.local", Token: "thisIsMyToken"}

	assert.NotContains(t, fmt.Sprintf("%v", cfg), "thisIsMyToken")
	assert.NotContains(t, fmt.Sprintf("%+v", cfg), "thisIsMyToken")
	assert.NotContains(t, fmt.Sprintf("%#v", cfg.Token), "thisIsMyToken")

	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "thisIsMyToken")
	assert.Contains(t, string(data), "[REDACTED]")

	assert.Equal(t, "thisIsMyToken", cfg.Token.Reveal())
}

func TestSecret_EmptyStaysEmpty(t *testing.T) {
	var s netbox.Secret
	assert.Equal(t, "", s.String())
}
