// internal/sources/sourcestest/fakes.go

// Package sourcestest provides in-memory student and scholarship sources for tests.
package sourcestest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"scholarship-engine/internal/models"
	"scholarship-engine/internal/sources"
)

type Students struct {
	mu       sync.Mutex
	Profiles map[string]models.StudentProfile
	Err      error
	Calls    int
}

func (s *Students) GetStudent(_ context.Context, id string) (*models.StudentProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++

	if s.Err != nil {
		return nil, s.Err
	}
	p, ok := s.Profiles[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", sources.ErrStudentNotFound, id)
	}
	return &p, nil
}

type Catalogue struct {
	mu           sync.Mutex
	Scholarships map[string]models.Scholarship
	Err          error
	Calls        int
}

func NewCatalogue(schs ...models.Scholarship) *Catalogue {
	c := &Catalogue{Scholarships: make(map[string]models.Scholarship, len(schs))}
	for _, s := range schs {
		c.Scholarships[s.ID] = s
	}
	return c
}

func (c *Catalogue) GetScholarship(_ context.Context, id string) (*models.Scholarship, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls++

	if c.Err != nil {
		return nil, c.Err
	}
	s, ok := c.Scholarships[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", sources.ErrScholarshipNotFound, id)
	}
	return &s, nil
}

func (c *Catalogue) GetScholarships(ctx context.Context, ids []string) ([]models.Scholarship, error) {
	out := make([]models.Scholarship, 0, len(ids))
	for _, id := range ids {
		s, err := c.GetScholarship(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, nil
}

// ActiveScholarships returns active entries ordered by id.
func (c *Catalogue) ActiveScholarships(_ context.Context) ([]models.Scholarship, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls++

	if c.Err != nil {
		return nil, c.Err
	}
	var out []models.Scholarship
	for _, s := range c.Scholarships {
		if s.IsActive {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

var (
	_ sources.StudentSource     = (*Students)(nil)
	_ sources.ScholarshipSource = (*Catalogue)(nil)
)
