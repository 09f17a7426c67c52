// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/bwmdecode/batch"
	"github.com/katalvlaran/bwmdecode/decoding"
)

// SessionFile is a YAML (or JSON) list of recorded sessions.
type SessionFile struct {
	Sessions []Session `yaml:"sessions" validate:"required,min=1,dive"`
}

// Session is one recording restricted to one region.
type Session struct {
	Session string  `yaml:"session" validate:"required"`
	Subject string  `yaml:"subject"`
	Region  string  `yaml:"region" validate:"required"`
	Trials  []Trial `yaml:"trials" validate:"required,min=1,dive"`
}

// Trial holds bins×units features and one target per bin (or one in total).
type Trial struct {
	Features [][]float64 `yaml:"features" validate:"required,min=1,dive,min=1"`
	Target   []float64   `yaml:"target" validate:"required,min=1"`
}

// LoadSessions reads and validates a session file.
func LoadSessions(path string) (*SessionFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	sf, err := ParseSessions(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sf, nil
}

// ParseSessions decodes and validates session data.
func ParseSessions(data []byte) (*SessionFile, error) {
	var sf SessionFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sf); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalid)
	}
	if err := validate.Struct(&sf); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalid)
	}
	return &sf, nil
}

// TrialSet converts the session into a decoding.TrialSet. Ragged feature
// rows are rejected; bin and unit agreement across trials is left to
// TrialSet.Shape.
func (s Session) TrialSet() (*decoding.TrialSet, error) {
	set := &decoding.TrialSet{
		Features: make([]*mat.Dense, len(s.Trials)),
		Targets:  make([][]float64, len(s.Trials)),
	}
	for i, tr := range s.Trials {
		units := len(tr.Features[0])
		data := make([]float64, 0, len(tr.Features)*units)
		for b, row := range tr.Features {
			if len(row) != units {
				return nil, fmt.Errorf("session %s trial %d bin %d: %d units, bin 0 has %d: %w",
					s.Session, i, b, len(row), units, decoding.ErrUnitMismatch)
			}
			data = append(data, row...)
		}
		set.Features[i] = mat.NewDense(len(tr.Features), units, data)
		set.Targets[i] = append([]float64(nil), tr.Target...)
	}
	return set, nil
}

// Tasks expands every session into one task per pseudo id.
func (sf *SessionFile) Tasks(pseudoIDs []int) ([]batch.Task, error) {
	tasks := make([]batch.Task, 0, len(sf.Sessions)*len(pseudoIDs))
	for _, s := range sf.Sessions {
		set, err := s.TrialSet()
		if err != nil {
			return nil, err
		}
		for _, id := range pseudoIDs {
			tasks = append(tasks, batch.Task{
				Session:  s.Session,
				Subject:  s.Subject,
				Region:   s.Region,
				PseudoID: id,
				Set:      set,
			})
		}
	}
	return tasks, nil
}
