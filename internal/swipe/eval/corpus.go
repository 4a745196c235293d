package eval

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/featherkey/swipekit/internal/swipe/touch"
)

// GesturePoint is one recorded touch sample in corpus JSON. Velocities
// are not stored; they are re-derived on load so corpus files stay valid
// when the smoothing window changes.
type GesturePoint struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	TNs int64   `json:"t_ns"`
}

// Case is one labeled gesture: the raw samples and the word the typist
// intended.
type Case struct {
	ID       string         `json:"id"`
	Expected string         `json:"expected"`
	Points   []GesturePoint `json:"points"`
	Notes    string         `json:"notes,omitempty"`
}

// SwipePoints converts the recorded samples into pipeline input with
// velocities derived the same way live capture derives them.
func (c *Case) SwipePoints() []touch.SwipePoint {
	samples := make([]touch.Sample, len(c.Points))
	for i, p := range c.Points {
		samples[i] = touch.Sample{X: p.X, Y: p.Y, TimestampUnixNanos: p.TNs}
	}
	return touch.Derive(samples, touch.DefaultBuilderParams())
}

// Corpus is a named set of labeled gestures recorded against one layout.
type Corpus struct {
	Name   string `json:"name"`
	Layout string `json:"layout"`
	Cases  []Case `json:"cases"`
}

// ParseCorpus decodes and validates a corpus. Cases need an ID and an
// expected word; empty or short point lists are allowed so degenerate
// handling stays under test.
func ParseCorpus(r io.Reader) (*Corpus, error) {
	var c Corpus
	dec := json.NewDecoder(r)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode corpus: %w", err)
	}

	if len(c.Cases) == 0 {
		return nil, fmt.Errorf("corpus %q: no cases", c.Name)
	}
	seen := make(map[string]struct{}, len(c.Cases))
	for i, cs := range c.Cases {
		if cs.ID == "" {
			return nil, fmt.Errorf("corpus %q: case %d has no id", c.Name, i)
		}
		if _, dup := seen[cs.ID]; dup {
			return nil, fmt.Errorf("corpus %q: duplicate case id %q", c.Name, cs.ID)
		}
		seen[cs.ID] = struct{}{}
		if cs.Expected == "" {
			return nil, fmt.Errorf("corpus %q: case %q has no expected word", c.Name, cs.ID)
		}
	}
	return &c, nil
}

// LoadCorpus reads a corpus JSON file from disk.
func LoadCorpus(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()
	return ParseCorpus(f)
}

// LoadCase reads a single labeled gesture JSON file. The file holds one
// Case object; Expected may be empty for ad-hoc recognition input.
func LoadCase(path string) (*Case, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gesture: %w", err)
	}
	defer f.Close()

	var c Case
	if err := json.NewDecoder(f).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode gesture: %w", err)
	}
	if len(c.Points) == 0 {
		return nil, fmt.Errorf("gesture %s: no points", path)
	}
	return &c, nil
}
