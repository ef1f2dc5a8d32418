// Package fixtures reads YAML record sets used to seed a development or demo
// deployment.
package fixtures

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sjperalta/bufete-api/internal/models"
	"gopkg.in/yaml.v3"
)

// Set is one fixture file
type Set struct {
	Audits      []models.AuditRecord `yaml:"audits"`
	Expenses    []models.Expense     `yaml:"expenses"`
	TimeEntries []models.TimeEntry   `yaml:"time_entries"`
}

// Load reads and validates a fixture file
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}
	set, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// Parse decodes fixtures strictly: unknown keys and invalid records are errors
func Parse(data []byte) (*Set, error) {
	var set Set
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&set); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid fixtures: %w", err)
	}

	for i, r := range set.Audits {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("audits[%d]: %w", i, err)
		}
	}
	for i, e := range set.Expenses {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("expenses[%d]: %w", i, err)
		}
	}
	for i, t := range set.TimeEntries {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("time_entries[%d]: %w", i, err)
		}
	}
	return &set, nil
}

// Len returns the number of records in the set
func (s *Set) Len() int {
	return len(s.Audits) + len(s.Expenses) + len(s.TimeEntries)
}
