// cmd/tools/registry-updater/main_test.go
package main

import (
	"path/filepath"
	"testing"

	"placement-workers/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddUpdateValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity-registry.json")

	require.NoError(t, runAdd([]string{
		"-path", path,
		"-taskType", "compute-home-matches",
		"-displayName", "Compute Home Matches",
		"-timeout", "30000",
		"-errorCodes", "REFERRAL_NOT_FOUND, QUERY_TIMEOUT",
	}))
	assert.ErrorContains(t, runAdd([]string{"-path", path, "-taskType", "compute-home-matches", "-displayName", "x"}),
		"already exists")

	require.NoError(t, runUpdate([]string{"-path", path, "-taskType", "compute-home-matches", "-field", "retries", "-value", "5"}))
	assert.ErrorContains(t, runUpdate([]string{"-path", path, "-taskType", "compute-home-matches", "-field", "owner", "-value", "x"}),
		"unknown field")
	assert.ErrorContains(t, runUpdate([]string{"-path", path, "-taskType", "ghost", "-field", "retries", "-value", "1"}),
		"not found")

	require.NoError(t, runValidate([]string{"-path", path}))

	reg, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	a, ok := reg.Lookup("compute-home-matches")
	require.True(t, ok)
	assert.Equal(t, 5, a.Retries)
	assert.Equal(t, 30000, a.Timeout)
	assert.Equal(t, "placement", a.Category)
	assert.Equal(t, []string{"REFERRAL_NOT_FOUND", "QUERY_TIMEOUT"}, a.ErrorCodes)
	assert.NotEmpty(t, reg.LastUpdated)
}

func TestUpdate_RejectsInvalidValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity-registry.json")
	require.NoError(t, runAdd([]string{"-path", path, "-taskType", "a", "-displayName", "A"}))

	assert.ErrorContains(t, runUpdate([]string{"-path", path, "-taskType", "a", "-field", "timeout", "-value", "soon"}),
		"invalid timeout value")
	assert.ErrorContains(t, runUpdate([]string{"-path", path, "-taskType", "a", "-field", "timeout", "-value", "0"}),
		"timeout must be positive")
}
