package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"fundingos-workers/internal/common/errors"
	"fundingos-workers/pkg/registry"
)

// Validator checks job variables against the input schemas declared in the
// activity registry. Task types without a schema always pass.
type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

func NewValidator(reg *registry.ActivityRegistry) (*Validator, error) {
	v := &Validator{schemas: map[string]*gojsonschema.Schema{}}
	if reg == nil {
		return v, nil
	}
	for _, a := range reg.Activities {
		if len(a.InputSchema) == 0 {
			continue
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(a.InputSchema))
		if err != nil {
			return nil, fmt.Errorf("compile input schema for %s: %w", a.TaskType, err)
		}
		v.schemas[a.TaskType] = schema
	}
	return v, nil
}

func (v *Validator) HasSchema(taskType string) bool {
	_, ok := v.schemas[taskType]
	return ok
}

// Validate returns an INPUT_VALIDATION_FAILED error listing every violation.
func (v *Validator) Validate(taskType string, variables map[string]interface{}) error {
	schema, ok := v.schemas[taskType]
	if !ok {
		return nil
	}
	if variables == nil {
		variables = map[string]interface{}{}
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(variables))
	if err != nil {
		return errors.NewInputValidationFailedError(err.Error())
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		msgs[i] = desc.String()
	}
	sort.Strings(msgs)
	return errors.NewInputValidationFailedError(strings.Join(msgs, "; ")).
		WithMetadata("taskType", taskType).
		WithMetadata("violations", len(msgs))
}
