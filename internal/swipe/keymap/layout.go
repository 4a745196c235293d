package keymap

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

// layoutFile is the JSON wire format for custom layouts. Key centers are
// absolute pixel coordinates in the same space the touch samples use.
type layoutFile struct {
	Name   string    `json:"name"`
	Width  float64   `json:"width"`
	Height float64   `json:"height"`
	Keys   []keyFile `json:"keys"`
}

type keyFile struct {
	Char   string  `json:"char"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Row    int     `json:"row"`
}

// ParseLayout decodes a layout from JSON. Each key's char must be a
// single rune; board and key dimensions must be positive.
func ParseLayout(r io.Reader) (Layout, error) {
	var lf layoutFile
	dec := json.NewDecoder(r)
	if err := dec.Decode(&lf); err != nil {
		return Layout{}, fmt.Errorf("decode layout: %w", err)
	}

	if lf.Width <= 0 || lf.Height <= 0 {
		return Layout{}, fmt.Errorf("layout %q: board dimensions must be positive, got %gx%g", lf.Name, lf.Width, lf.Height)
	}
	if len(lf.Keys) == 0 {
		return Layout{}, fmt.Errorf("layout %q: no keys", lf.Name)
	}

	layout := Layout{
		Name:   lf.Name,
		Width:  lf.Width,
		Height: lf.Height,
		Keys:   make([]Key, 0, len(lf.Keys)),
	}
	seen := make(map[rune]struct{}, len(lf.Keys))
	for i, kf := range lf.Keys {
		ch, size := utf8.DecodeRuneInString(kf.Char)
		if ch == utf8.RuneError || size != len(kf.Char) {
			return Layout{}, fmt.Errorf("layout %q: key %d char %q is not a single rune", lf.Name, i, kf.Char)
		}
		if _, dup := seen[ch]; dup {
			return Layout{}, fmt.Errorf("layout %q: duplicate key %q", lf.Name, ch)
		}
		seen[ch] = struct{}{}
		if kf.Width <= 0 || kf.Height <= 0 {
			return Layout{}, fmt.Errorf("layout %q: key %q dimensions must be positive", lf.Name, ch)
		}
		layout.Keys = append(layout.Keys, Key{
			Char:   ch,
			Center: Point{X: kf.X, Y: kf.Y},
			Width:  kf.Width,
			Height: kf.Height,
			Row:    kf.Row,
		})
	}
	return layout, nil
}

// LoadLayout reads a layout JSON file from disk.
func LoadLayout(path string) (Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return Layout{}, fmt.Errorf("open layout: %w", err)
	}
	defer f.Close()
	return ParseLayout(f)
}
