// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LoadRegistry reads and checks a registry file. Task types must be unique
// and non-empty.
func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}

	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}

	seen := make(map[string]bool, len(reg.Activities))
	for i, a := range reg.Activities {
		if a.TaskType == "" {
			return nil, fmt.Errorf("registry activity %d has no taskType", i)
		}
		if seen[a.TaskType] {
			return nil, fmt.Errorf("duplicate taskType %q in registry", a.TaskType)
		}
		seen[a.TaskType] = true
	}

	return &reg, nil
}

func (r *ActivityRegistry) Lookup(taskType string) (Activity, bool) {
	for _, a := range r.Activities {
		if a.TaskType == taskType {
			return a, true
		}
	}
	return Activity{}, false
}

// Require returns an error naming every task type missing from the registry.
func (r *ActivityRegistry) Require(taskTypes ...string) error {
	var missing []string
	for _, tt := range taskTypes {
		if _, ok := r.Lookup(tt); !ok {
			missing = append(missing, tt)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("task types not registered: %v", missing)
	}
	return nil
}

// Validate checks the fields a published registry must carry.
func (r *ActivityRegistry) Validate() error {
	if len(r.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}
	for _, a := range r.Activities {
		switch {
		case a.DisplayName == "":
			return fmt.Errorf("activity %s missing required field: displayName", a.TaskType)
		case a.Category == "":
			return fmt.Errorf("activity %s missing required field: category", a.TaskType)
		case a.Timeout <= 0:
			return fmt.Errorf("activity %s: timeout must be positive", a.TaskType)
		case a.Retries < 0:
			return fmt.Errorf("activity %s: retries must not be negative", a.TaskType)
		}
	}
	return nil
}

// SaveRegistry writes reg as indented JSON, creating the directory if needed.
func SaveRegistry(reg *ActivityRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}
