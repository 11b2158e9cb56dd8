package core

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Roster is a static bootstrap list of NodeIDs a node expects to sync
// with, used only to seed the session liveness table before the first
// sync packet arrives (spec §12 supplement). It does not size the digest
// cache and does not add entries to Logic.SessionNames. It never
// participates in merge or suppression.
type Roster struct {
	// Peers holds each expected participant's NodeID, rendered as its
	// hierarchical-name string form (e.g. "/org/site/node-3").
	Peers []string `yaml:"peers"`
}

// LoadRoster reads a YAML roster file. A missing file is not an error:
// callers that don't configure a roster simply start with an empty one.
func LoadRoster(file string) (*Roster, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return &Roster{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return &r, nil
}
