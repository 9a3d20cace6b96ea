package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfg "github.com/oweru/content-api/configs"
)

func newR2(publicBaseURL string) *R2Service {
	return NewR2Service(cfg.Config{R2: cfg.R2{PublicBaseURL: publicBaseURL}})
}

func TestR2PublicURL(t *testing.T) {
	r2 := newR2("https://cdn.oweru.example")
	assert.Equal(t, "https://cdn.oweru.example/abc123", r2.PublicURL("abc123"))

	withSlash := newR2("https://cdn.oweru.example/")
	assert.Equal(t, "https://cdn.oweru.example/abc123", withSlash.PublicURL("abc123"))
}

func TestR2KeyFromURL(t *testing.T) {
	r2 := newR2("https://cdn.oweru.example")

	key, err := r2.KeyFromURL("https://cdn.oweru.example/abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", key)

	_, err = r2.KeyFromURL("https://elsewhere.example/abc123")
	assert.Error(t, err)

	_, err = r2.KeyFromURL("https://cdn.oweru.example/")
	assert.Error(t, err)

	_, err = r2.KeyFromURL("https://cdn.oweru.example/nested/key")
	assert.Error(t, err)
}
