package state

import (
	"encoding/json"

	"github.com/goliatone/go-rna/internal/hydrate"
)

// Trace captures how every layer of a resolution contributed to the entry
// at one path.
type Trace struct {
	Path   string       `json:"path"`
	Layers []Provenance `json:"layers"`
}

// Provenance details one layer's contribution to a traced path.
type Provenance struct {
	Ref        string `json:"ref"`
	SnapshotID string `json:"snapshot_id,omitempty"`
	Value      any    `json:"value,omitempty"`
	Found      bool   `json:"found"`
}

// Trace reports, strongest first, which layers hold the entry at path and
// the value each of them stores.
func (r Resolution) Trace(path string) Trace {
	trace := Trace{Path: path, Layers: make([]Provenance, 0, len(r.Layers))}
	for _, layer := range r.Layers {
		key, err := layer.Ref.Identifier()
		if err != nil {
			key = layer.Ref.String()
		}
		entry := lookup(layer.Group, path)
		trace.Layers = append(trace.Layers, Provenance{
			Ref:        key,
			SnapshotID: layer.Meta.SnapshotID,
			Value:      hydrate.Value(entry),
			Found:      entry != nil,
		})
	}
	return trace
}

// Winner returns the provenance of the strongest layer holding the entry.
func (t Trace) Winner() (Provenance, bool) {
	for _, p := range t.Layers {
		if p.Found {
			return p, true
		}
	}
	return Provenance{}, false
}

// ToJSON serialises the trace for logging or transport.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON decodes a payload produced by ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}
