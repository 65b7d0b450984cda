package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvironmentDetection(t *testing.T) {
	t.Setenv("ENV", "production")
	assert.True(t, IsProduction())
	assert.False(t, IsDevelopment())

	t.Setenv("ENV", "development")
	assert.True(t, IsDevelopment())
	assert.False(t, IsProduction())

	// Unrecognized values count as development.
	t.Setenv("ENV", "staging")
	assert.True(t, IsDevelopment())
	assert.False(t, IsProduction())

	t.Setenv("ENV", "")
	assert.True(t, IsDevelopment())
}
