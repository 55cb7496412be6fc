// cmd/tools/worker-generator/main.go
package main

import (
	"bytes"
	"flag"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	"fundingos-workers/pkg/registry"
)

// WorkerData holds data for templates
type WorkerData struct {
	Name         string
	PackageName  string
	TaskType     string
	Description  string
	Timeout      string
	InputFields  string
	OutputFields string
}

// parseSchema extracts properties from a JSON schema object
func parseSchema(schema map[string]interface{}) map[string]interface{} {
	if props, ok := schema["properties"].(map[string]interface{}); ok {
		return props
	}
	return map[string]interface{}{}
}

// goTypeFromJSONType maps JSON schema types to Go types
func goTypeFromJSONType(jsonType interface{}) string {
	switch jsonType {
	case "string":
		return "string"
	case "integer":
		return "int"
	case "number":
		return "float64"
	case "boolean":
		return "bool"
	case "object":
		return "map[string]interface{}"
	case "array":
		return "[]interface{}"
	}
	return "interface{}"
}

// generateStructFields renders one field per schema property, sorted by name.
// Properties outside required get omitempty.
func generateStructFields(schema map[string]interface{}) string {
	required := map[string]bool{}
	if req, ok := schema["required"].([]interface{}); ok {
		for _, r := range req {
			if s, ok := r.(string); ok {
				required[s] = true
			}
		}
	}

	properties := parseSchema(schema)
	names := make([]string, 0, len(properties))
	for name := range properties {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]string, 0, len(names))
	for _, name := range names {
		details, _ := properties[name].(map[string]interface{})
		tag := name
		if !required[name] {
			tag += ",omitempty"
		}
		fields = append(fields, fmt.Sprintf("\t%s %s `json:\"%s\"`", upperFirst(name), goTypeFromJSONType(details["type"]), tag))
	}
	return strings.Join(fields, "\n")
}

// upperFirst makes the first character uppercase
func upperFirst(s string) string {
	if s == "" {
		return s
	}
	if strings.HasSuffix(s, "Id") {
		s = strings.TrimSuffix(s, "Id") + "ID"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// mapCategoryToDirectory maps registry categories to directory names
func mapCategoryToDirectory(category string) string {
	switch category {
	case "funding", "scoring":
		return "funding"
	case "ai-conversation", "ai-ml", "notification":
		return "ai-conversation"
	default:
		return strings.ToLower(category)
	}
}

const configTemplate = `package {{ .PackageName }}

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: {{ .Timeout }},
	}
}
`

const modelsTemplate = `package {{ .PackageName }}

type Input struct {
{{ .InputFields }}
}

type Output struct {
{{ .OutputFields }}
}
`

const handlerTemplate = `package {{ .PackageName }}

import (
	"context"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"fundingos-workers/internal/common/errors"
	"fundingos-workers/internal/common/logger"
	"fundingos-workers/internal/common/metrics"
)

const TaskType = "{{ .TaskType }}"

type InputValidator interface {
	Validate(taskType string, variables map[string]interface{}) error
}

// Handler runs {{ .Name }}: {{ .Description }}
type Handler struct {
	config     *Config
	validator  InputValidator
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, validator InputValidator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		validator:  validator,
		errHandler: errors.NewErrorHandler(log),
		logger:     log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	started := time.Now()

	vars, err := job.GetVariablesAsMap()
	if err != nil {
		h.failJob(client, job, started, errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}
	if h.validator != nil {
		if err := h.validator.Validate(TaskType, vars); err != nil {
			h.failJob(client, job, started, err)
			return
		}
	}

	var input Input
	if err := job.GetVariablesAs(&input); err != nil {
		h.failJob(client, job, started, errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, started, err)
		return
	}

	h.completeJob(client, job, output)
	metrics.ObserveJob(TaskType, started, "")
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	return nil, errors.NewInternalError(fmt.Errorf("%s is not implemented", TaskType))
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, started time.Time, err error) {
	stdErr := errors.AsStandardError(err)
	metrics.ObserveJob(TaskType, started, string(stdErr.Code))
	h.errHandler.HandleJobError(context.Background(), client, job, stdErr)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
`

// goDuration turns a registry timeout such as "15s" into a Go expression.
// Unparseable or empty timeouts fall back to 30 seconds.
func goDuration(timeout string) string {
	d, err := time.ParseDuration(timeout)
	if err != nil || d <= 0 {
		return "30 * time.Second"
	}
	switch {
	case d%time.Minute == 0:
		return fmt.Sprintf("%d * time.Minute", d/time.Minute)
	case d%time.Second == 0:
		return fmt.Sprintf("%d * time.Second", d/time.Second)
	}
	return fmt.Sprintf("%d * time.Millisecond", d/time.Millisecond)
}

// render executes tmpl and gofmts the result.
func render(name, tmpl string, data WorkerData) ([]byte, error) {
	t, err := template.New(name).Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}
	return format.Source(buf.Bytes())
}

func newWorkerData(a *registry.Activity) WorkerData {
	return WorkerData{
		Name:         a.DisplayName,
		PackageName:  strings.ReplaceAll(a.ID, "-", ""),
		TaskType:     a.TaskType,
		Description:  a.Description,
		Timeout:      goDuration(a.Timeout),
		InputFields:  generateStructFields(a.InputSchema),
		OutputFields: generateStructFields(a.OutputSchema),
	}
}

func main() {
	activity := flag.String("activity", "", "Activity ID from registry (e.g., check-deadlines)")
	outputDir := flag.String("output", "./internal/workers/", "Output directory for the generated worker")
	registryPath := flag.String("registry", "configs/activity-registry.json", "Path to the activity registry JSON file")
	force := flag.Bool("force", false, "Overwrite existing files")
	flag.Parse()

	if *activity == "" {
		fmt.Println("Usage: worker-generator --activity <id> --output <dir> [--registry <path>]")
		fmt.Println("\nExample:")
		fmt.Println("  go run cmd/tools/worker-generator/main.go --activity check-deadlines")
		os.Exit(1)
	}

	reg, err := registry.LoadRegistry(*registryPath)
	if err != nil {
		fmt.Printf("Error loading registry from %s: %v\n", *registryPath, err)
		os.Exit(1)
	}

	var found *registry.Activity
	for i := range reg.Activities {
		if reg.Activities[i].ID == *activity {
			found = &reg.Activities[i]
			break
		}
	}
	if found == nil {
		fmt.Printf("Activity '%s' not found in registry %s\n", *activity, *registryPath)
		os.Exit(1)
	}

	data := newWorkerData(found)
	workerDir := filepath.Join(*outputDir, mapCategoryToDirectory(found.Category), found.ID)
	if err := os.MkdirAll(workerDir, 0755); err != nil {
		fmt.Printf("Error creating directory: %v\n", err)
		os.Exit(1)
	}

	templates := map[string]string{
		"config.go":  configTemplate,
		"models.go":  modelsTemplate,
		"handler.go": handlerTemplate,
	}
	for filename, tmpl := range templates {
		path := filepath.Join(workerDir, filename)
		if _, err := os.Stat(path); err == nil && !*force {
			fmt.Printf("- Skipped %s (exists)\n", path)
			continue
		}

		src, err := render(filename, tmpl, data)
		if err != nil {
			fmt.Printf("Error generating %s: %v\n", filename, err)
			os.Exit(1)
		}
		if err := os.WriteFile(path, src, 0644); err != nil {
			fmt.Printf("Error writing %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("✓ Generated %s\n", path)
	}

	fmt.Printf("\nWorker scaffold generated at: %s\n", workerDir)
	fmt.Printf("\nNext steps:\n")
	fmt.Printf("  1. Implement execute in handler.go\n")
	fmt.Printf("  2. Write tests in handler_test.go\n")
	fmt.Printf("  3. Register the worker in cmd/worker-manager/main.go\n")
	fmt.Printf("  4. Add a workers.%s section to configs/config.yaml\n", found.TaskType)
}
