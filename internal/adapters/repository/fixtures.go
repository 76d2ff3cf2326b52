package repository

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/okian/tatami/internal/domain/model"
)

// Fixtures is a YAML document of phases and their matches.
type Fixtures struct {
	Phases []PhaseFixture `yaml:"phases"`
}

// PhaseFixture is one phase of a fixture file.
type PhaseFixture struct {
	ID      string        `yaml:"id"`
	Matches []model.Match `yaml:"matches"`
}

// LoadFixtures reads a fixture file from disk.
func LoadFixtures(path string) (*Fixtures, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFixtures, err)
	}
	defer func() { _ = f.Close() }()
	return ReadFixtures(f)
}

// ReadFixtures decodes fixtures from r. Matches without a phase id inherit
// the id of the phase they are listed under.
func ReadFixtures(r io.Reader) (*Fixtures, error) {
	var fx Fixtures
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFixtures, err)
	}
	for i := range fx.Phases {
		p := &fx.Phases[i]
		if p.ID == "" {
			return nil, fmt.Errorf("%w: phase %d has no id", ErrFixtures, i)
		}
		for j := range p.Matches {
			m := &p.Matches[j]
			if m.PhaseID == "" {
				m.PhaseID = p.ID
			}
			if err := m.Validate(); err != nil {
				return nil, fmt.Errorf("%w: phase %s: %w", ErrFixtures, p.ID, err)
			}
		}
	}
	return &fx, nil
}

// Phase returns the matches listed under id.
func (f *Fixtures) Phase(id string) ([]model.Match, error) {
	for _, p := range f.Phases {
		if p.ID == id {
			return p.Matches, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Seed writes every fixture match into store and returns how many were written.
func (f *Fixtures) Seed(ctx context.Context, store MatchStore) (int, error) {
	n := 0
	for _, p := range f.Phases {
		for _, m := range p.Matches {
			if err := ctx.Err(); err != nil {
				return n, err
			}
			if _, err := store.Upsert(ctx, m); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}
