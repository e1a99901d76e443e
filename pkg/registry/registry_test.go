// pkg/registry/registry_test.go
package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRegistry(t *testing.T, body string) string {
	path := filepath.Join(t.TempDir(), "activity-registry.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadRegistry(t *testing.T) {
	path := writeRegistry(t, `{
		"version": "1.0.0",
		"activities": [
			{"taskType": "compute-home-matches", "timeout": 30000, "retries": 3,
			 "errorCodes": ["REFERRAL_NOT_FOUND"]},
			{"taskType": "update-home-profile", "timeout": 10000, "retries": 3}
		]
	}`)

	reg, err := LoadRegistry(path)
	require.NoError(t, err)

	a, ok := reg.Lookup("compute-home-matches")
	require.True(t, ok)
	assert.Equal(t, 30000, a.Timeout)
	assert.Equal(t, []string{"REFERRAL_NOT_FOUND"}, a.ErrorCodes)

	_, ok = reg.Lookup("send-email")
	assert.False(t, ok)

	assert.NoError(t, reg.Require("compute-home-matches", "update-home-profile"))
	assert.EqualError(t, reg.Require("compute-home-matches", "send-email", "crm"),
		"task types not registered: [send-email crm]")
}

func TestLoadRegistry_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad json", `{`, "parse registry"},
		{"missing task type", `{"activities":[{"displayName":"x"}]}`, "has no taskType"},
		{"duplicate", `{"activities":[{"taskType":"a"},{"taskType":"a"}]}`, `duplicate taskType "a"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRegistry(writeRegistry(t, tt.body))
			assert.ErrorContains(t, err, tt.want)
		})
	}

	_, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	valid := Activity{TaskType: "a", DisplayName: "A", Category: "placement", Timeout: 1000}

	tests := []struct {
		name   string
		mutate func(a *Activity)
		want   string
	}{
		{"ok", func(*Activity) {}, ""},
		{"no display name", func(a *Activity) { a.DisplayName = "" }, "displayName"},
		{"no category", func(a *Activity) { a.Category = "" }, "category"},
		{"zero timeout", func(a *Activity) { a.Timeout = 0 }, "timeout must be positive"},
		{"negative retries", func(a *Activity) { a.Retries = -1 }, "retries must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := valid
			tt.mutate(&a)
			err := (&ActivityRegistry{Activities: []Activity{a}}).Validate()
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.want)
		})
	}

	assert.EqualError(t, (&ActivityRegistry{}).Validate(), "registry contains no activities")
}

func TestSaveRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "activity-registry.json")
	reg := &ActivityRegistry{Version: "1.0.0", Activities: []Activity{{TaskType: "a", Timeout: 500}}}

	require.NoError(t, SaveRegistry(reg, path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, reg, loaded)
}

func TestShippedRegistry(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join("..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)
	assert.NoError(t, reg.Validate())
	assert.NoError(t, reg.Require("compute-home-matches", "update-referral-status", "update-home-profile"))
}
