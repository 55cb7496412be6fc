package main

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundingos-workers/pkg/registry"
)

func TestGenerateStructFields(t *testing.T) {
	schema := map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"message"},
		"properties": map[string]interface{}{
			"message":        map[string]interface{}{"type": "string"},
			"conversationId": map[string]interface{}{"type": "string"},
			"limit":          map[string]interface{}{"type": "integer"},
		},
	}

	assert.Equal(t,
		"\tConversationID string `json:\"conversationId,omitempty\"`\n"+
			"\tLimit int `json:\"limit,omitempty\"`\n"+
			"\tMessage string `json:\"message\"`",
		generateStructFields(schema))
	assert.Empty(t, generateStructFields(nil))
}

func TestGoDuration(t *testing.T) {
	assert.Equal(t, "15 * time.Second", goDuration("15s"))
	assert.Equal(t, "2 * time.Minute", goDuration("2m"))
	assert.Equal(t, "1500 * time.Millisecond", goDuration("1.5s"))
	assert.Equal(t, "30 * time.Second", goDuration(""))
	assert.Equal(t, "30 * time.Second", goDuration("soon"))
}

func TestMapCategoryToDirectory(t *testing.T) {
	assert.Equal(t, "funding", mapCategoryToDirectory("funding"))
	assert.Equal(t, "ai-conversation", mapCategoryToDirectory("notification"))
	assert.Equal(t, "reporting", mapCategoryToDirectory("Reporting"))
}

func TestRenderProducesValidGo(t *testing.T) {
	data := newWorkerData(&registry.Activity{
		ID:          "summarize-portfolio",
		DisplayName: "Summarize Portfolio",
		Description: "Summarizes tracked opportunities",
		TaskType:    "summarize-portfolio",
		Timeout:     "20s",
		InputSchema: map[string]interface{}{
			"properties": map[string]interface{}{"organizationId": map[string]interface{}{"type": "string"}},
		},
		OutputSchema: map[string]interface{}{
			"properties": map[string]interface{}{"total": map[string]interface{}{"type": "integer"}},
		},
	})
	assert.Equal(t, "summarizeportfolio", data.PackageName)

	for name, tmpl := range map[string]string{
		"config.go":  configTemplate,
		"models.go":  modelsTemplate,
		"handler.go": handlerTemplate,
	} {
		src, err := render(name, tmpl, data)
		require.NoError(t, err, name)
		_, err = parser.ParseFile(token.NewFileSet(), name, src, parser.AllErrors)
		require.NoError(t, err, name)
	}
}
