package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maploader/internal/resource"
)

func TestParseKind(t *testing.T) {
	tests := map[string]resource.Kind{
		"unknown":      resource.KindUnknown,
		"style":        resource.KindStyle,
		"source":       resource.KindSource,
		"tile":         resource.KindTile,
		"glyphs":       resource.KindGlyphs,
		"sprite-image": resource.KindSpriteImage,
		"sprite-json":  resource.KindSpriteJSON,
	}
	for name, want := range tests {
		kind, err := parseKind(name)
		require.NoError(t, err)
		assert.Equal(t, want, kind)
	}

	_, err := parseKind("vector")
	assert.Error(t, err)
}

func TestPriorFromFlags(t *testing.T) {
	fetchFlags.etag = ""
	fetchFlags.modified = ""
	assert.Nil(t, priorFromFlags())

	fetchFlags.etag = `"v1"`
	prior := priorFromFlags()
	require.NotNil(t, prior)
	assert.Equal(t, `"v1"`, prior.Etag)

	fetchFlags.etag = ""
	fetchFlags.modified = "Mon, 23 Feb 2026 09:30:00 GMT"
	prior = priorFromFlags()
	require.NotNil(t, prior)
	assert.False(t, prior.Modified.IsZero())

	fetchFlags.modified = ""
}
