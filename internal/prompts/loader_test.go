package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_KnownKey(t *testing.T) {
	prompt, err := Get("advisory.json", "role_keywords")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.Role}}")
	assert.Contains(t, prompt, "JSON array")
}

func TestGet_UnknownKey(t *testing.T) {
	_, err := Get("advisory.json", "does_not_exist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does_not_exist")
}

func TestGet_UnknownFile(t *testing.T) {
	_, err := Get("nope.json", "role_keywords")
	require.Error(t, err)
}

func TestFormat_ReplacesPlaceholders(t *testing.T) {
	result := Format("role {{.Role}} for {{.Name}}", map[string]string{
		"Role": "Data Scientist",
		"Name": "Alice",
	})
	assert.Equal(t, "role Data Scientist for Alice", result)
}

func TestFormat_LeavesUnknownPlaceholders(t *testing.T) {
	result := Format("hello {{.Missing}}", map[string]string{"Other": "x"})
	assert.Equal(t, "hello {{.Missing}}", result)
}

func TestMustGet_PanicsOnMissing(t *testing.T) {
	assert.Panics(t, func() {
		MustGet("advisory.json", "definitely_missing")
	})
}
