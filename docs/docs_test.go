package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestSwaggerDocIsValidJSON(t *testing.T) {
	doc, err := swag.ReadDoc()
	require.NoError(t, err)

	var parsed struct {
		BasePath string                    `json:"basePath"`
		Paths    map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed))

	assert.Equal(t, "/api/v1", parsed.BasePath)
	for _, path := range []string{"/garden/state", "/garden/harvest", "/garden/plant", "/garden/cooldown", "/garden/grant", "/garden/events"} {
		assert.Contains(t, parsed.Paths, path)
	}
}
