package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New("", "")
	require.Error(t, err)
}

func TestNewDefaultsModel(t *testing.T) {
	c, err := New("sk-test", "")
	require.NoError(t, err)
	assert.Equal(t, string(defaultModel), c.GetModel())
}

func TestSetModel(t *testing.T) {
	c, err := New("sk-test", "claude-3-5-haiku-latest")
	require.NoError(t, err)
	assert.Equal(t, "claude-3-5-haiku-latest", c.GetModel())

	c.SetModel("claude-sonnet-4-20250514")
	assert.Equal(t, "claude-sonnet-4-20250514", c.GetModel())
}
