package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvironmentVariables(t *testing.T) {
	t.Setenv("INCIDENTPARSER_REDIS_ADDRESS", "redis:6379")
	t.Setenv("INCIDENTPARSER_REDIS_PASSWORD", "a=b")
	t.Setenv("OTHER_SERVICE_ADDRESS", "other:1")

	env := GetEnvironmentVariables()

	assert.Equal(t, "redis:6379", env["INCIDENTPARSER_REDIS_ADDRESS"])
	assert.Equal(t, "a=b", env["INCIDENTPARSER_REDIS_PASSWORD"])
	assert.NotContains(t, env, "OTHER_SERVICE_ADDRESS")
}

func TestIsEnabled(t *testing.T) {
	env := map[string]string{"A": "YES", "B": "yes", "C": "true", "D": ""}

	assert.True(t, IsEnabled(env, "A"))
	assert.True(t, IsEnabled(env, "B"))
	assert.False(t, IsEnabled(env, "C"))
	assert.False(t, IsEnabled(env, "D"))
	assert.False(t, IsEnabled(env, "E"))
}
