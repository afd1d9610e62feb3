// internal/models/source.go
package models

import "fmt"

// Source identifies one of the three independent estimate signals.
// A typed enum instead of ad-hoc string tags so weight handling stays
// exhaustive at normalization and blend time.
type Source int

const (
	SourceHud Source = iota
	SourceComps
	SourceML
)

// AllSources is the fixed blend order: hud, comps, ml.
var AllSources = []Source{SourceHud, SourceComps, SourceML}

func (s Source) String() string {
	switch s {
	case SourceHud:
		return "hud"
	case SourceComps:
		return "comps"
	case SourceML:
		return "ml"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// MarshalText keeps the wire form as the historical string tags.
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// SourceWeights maps each present source to its normalized blend weight.
// Invariant: values sum to 1.0 whenever the map is non-empty.
type SourceWeights map[Source]float64

// Sum returns the total of all present weights.
func (w SourceWeights) Sum() float64 {
	total := 0.0
	for _, v := range w {
		total += v
	}
	return total
}

// Tags returns the weights keyed by string tag, for JSON output.
func (w SourceWeights) Tags() map[string]float64 {
	if len(w) == 0 {
		return nil
	}
	out := make(map[string]float64, len(w))
	for s, v := range w {
		out[s.String()] = v
	}
	return out
}
