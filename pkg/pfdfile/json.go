package pfdfile

import (
	"encoding/json"
	"fmt"

	"github.com/ha1tch/pfd-toolkit/pkg/diagram"
)

// ParseJSON parses a scene from a bare JSON snapshot.
func ParseJSON(data []byte, opts ...diagram.Option) (*diagram.Scene, error) {
	var snap diagram.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return diagram.Deserialize(&snap, opts...)
}

// ToJSON converts a scene to a JSON snapshot.
func ToJSON(s *diagram.Scene, pretty bool) ([]byte, error) {
	snap := s.Serialize()
	if pretty {
		return json.MarshalIndent(snap, "", "  ")
	}
	return json.Marshal(snap)
}
