// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"pos-onboarding-workers/internal/common/validation"

	"github.com/xeipuuv/gojsonschema"
)

const DefaultPath = "configs/activity-registry.json"

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// Save writes the registry with activities ordered by id.
func Save(reg *ActivityRegistry, path string) error {
	sort.Slice(reg.Activities, func(i, j int) bool {
		return reg.Activities[i].ID < reg.Activities[j].ID
	})

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

// Validate checks ids are unique and follow domain.subdomain.action, and that
// every schema compiles.
func Validate(reg *ActivityRegistry) error {
	if len(reg.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}

	ids := make(map[string]bool)
	for _, activity := range reg.Activities {
		if activity.ID == "" {
			return fmt.Errorf("activity missing required field: ID")
		}
		if ids[activity.ID] {
			return fmt.Errorf("duplicate activity ID: %s", activity.ID)
		}
		ids[activity.ID] = true

		if err := validation.ValidateActivityNaming(activity.ID); err != nil {
			return err
		}
		if activity.TaskType != activity.ID {
			return fmt.Errorf("activity %s has task type %q; they must match", activity.ID, activity.TaskType)
		}
		if activity.DisplayName == "" {
			return fmt.Errorf("activity %s missing required field: DisplayName", activity.ID)
		}
		if activity.Category == "" {
			return fmt.Errorf("activity %s missing required field: Category", activity.ID)
		}
		if err := compiles(activity.InputSchema); err != nil {
			return fmt.Errorf("activity %s input schema: %w", activity.ID, err)
		}
		if err := compiles(activity.OutputSchema); err != nil {
			return fmt.Errorf("activity %s output schema: %w", activity.ID, err)
		}
	}
	return nil
}

func compiles(schema json.RawMessage) error {
	if len(schema) == 0 {
		return fmt.Errorf("missing")
	}
	_, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schema))
	return err
}
