// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// Find returns the activity bound to taskType.
func (r *ActivityRegistry) Find(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// Upsert replaces the activity with the same ID or appends it.
func (r *ActivityRegistry) Upsert(a Activity) {
	for i := range r.Activities {
		if r.Activities[i].ID == a.ID {
			r.Activities[i] = a
			return
		}
	}
	r.Activities = append(r.Activities, a)
}

func (r *ActivityRegistry) Validate() []error {
	var errs []error
	ids := map[string]bool{}
	taskTypes := map[string]bool{}

	for _, a := range r.Activities {
		if a.ID == "" {
			errs = append(errs, fmt.Errorf("activity with taskType %q has no id", a.TaskType))
		}
		if a.TaskType == "" {
			errs = append(errs, fmt.Errorf("activity %q has no taskType", a.ID))
		}
		if ids[a.ID] {
			errs = append(errs, fmt.Errorf("duplicate activity id %q", a.ID))
		}
		if a.TaskType != "" && taskTypes[a.TaskType] {
			errs = append(errs, fmt.Errorf("duplicate taskType %q", a.TaskType))
		}
		if a.Timeout != "" {
			if _, err := time.ParseDuration(a.Timeout); err != nil {
				errs = append(errs, fmt.Errorf("activity %q: invalid timeout %q", a.ID, a.Timeout))
			}
		}
		if a.Retries < 0 {
			errs = append(errs, fmt.Errorf("activity %q: negative retries", a.ID))
		}
		ids[a.ID] = true
		taskTypes[a.TaskType] = true
	}
	return errs
}

// Save writes the registry sorted by id, stamping LastUpdated.
func (r *ActivityRegistry) Save(path string) error {
	sort.Slice(r.Activities, func(i, j int) bool { return r.Activities[i].ID < r.Activities[j].ID })
	r.LastUpdated = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
