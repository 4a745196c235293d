package keymap

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoKeyLayoutJSON = `{
	"name": "tiny",
	"width": 200,
	"height": 100,
	"keys": [
		{"char": "a", "x": 50, "y": 50, "width": 100, "height": 100, "row": 0},
		{"char": "b", "x": 150, "y": 50, "width": 100, "height": 100, "row": 0}
	]
}`

func TestParseLayout(t *testing.T) {
	t.Parallel()

	layout, err := ParseLayout(strings.NewReader(twoKeyLayoutJSON))
	require.NoError(t, err)

	assert.Equal(t, "tiny", layout.Name)
	assert.Len(t, layout.Keys, 2)
	assert.Equal(t, 'a', layout.Keys[0].Char)
	assert.InDelta(t, 150.0, layout.Keys[1].Center.X, 1e-9)

	// A parsed layout must feed straight into geometry construction.
	g, err := NewGeometry(layout, DefaultGeometryParams())
	require.NoError(t, err)
	assert.Equal(t, 2, g.KeyCount())
}

func TestParseLayoutRejectsBadInput(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		json string
	}{
		{"malformed", `{"name": "x"`},
		{"zero board", `{"name": "x", "width": 0, "height": 100, "keys": [{"char": "a", "x": 1, "y": 1, "width": 1, "height": 1}]}`},
		{"no keys", `{"name": "x", "width": 10, "height": 10, "keys": []}`},
		{"multi-rune char", `{"name": "x", "width": 10, "height": 10, "keys": [{"char": "ab", "x": 1, "y": 1, "width": 1, "height": 1}]}`},
		{"duplicate key", `{"name": "x", "width": 10, "height": 10, "keys": [
			{"char": "a", "x": 1, "y": 1, "width": 1, "height": 1},
			{"char": "a", "x": 2, "y": 1, "width": 1, "height": 1}]}`},
		{"zero key size", `{"name": "x", "width": 10, "height": 10, "keys": [{"char": "a", "x": 1, "y": 1, "width": 0, "height": 1}]}`},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseLayout(strings.NewReader(tc.json))
			assert.Error(t, err)
		})
	}
}

func TestLoadLayoutMissingFile(t *testing.T) {
	t.Parallel()
	_, err := LoadLayout("does-not-exist.json")
	assert.Error(t, err)
}
