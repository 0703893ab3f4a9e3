// internal/roster/roster.go
//
// The worker roster: who can be dragged onto process steps. Workers are
// created once at startup (either the built-in seed set or a workers.yaml
// override) and are immutable afterwards; the ledger only moves references.

package roster

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Worker is a member of the workforce. Efficiency is a 0-100 rating used by
// the remote evaluation service when scoring an assignment.
type Worker struct {
	ID         string `yaml:"id" json:"id"`
	Name       string `yaml:"name" json:"name"`
	Role       string `yaml:"role" json:"role"`
	Efficiency int    `yaml:"efficiency" json:"efficiency"`
}

// Normalize trims fields and validates the entry.
func (w Worker) Normalize() (Worker, error) {
	w.ID = strings.TrimSpace(w.ID)
	w.Name = strings.TrimSpace(w.Name)
	w.Role = strings.TrimSpace(w.Role)
	if w.ID == "" {
		return Worker{}, errors.New("worker entry missing id")
	}
	if w.Name == "" {
		return Worker{}, fmt.Errorf("worker %s missing name", w.ID)
	}
	if w.Efficiency < 0 || w.Efficiency > 100 {
		return Worker{}, fmt.Errorf("worker %s efficiency %d out of range [0,100]", w.ID, w.Efficiency)
	}
	return w, nil
}

// Defaults returns the built-in seed roster.
func Defaults() []Worker {
	return []Worker{
		{ID: "W001", Name: "Sarah", Role: "Senior Approver", Efficiency: 92},
		{ID: "W002", Name: "James", Role: "Invoice Analyst", Efficiency: 85},
		{ID: "W003", Name: "Maria", Role: "Procurement Clerk", Efficiency: 78},
		{ID: "W004", Name: "David", Role: "Approver", Efficiency: 88},
		{ID: "W005", Name: "Elena", Role: "Process Analyst", Efficiency: 81},
		{ID: "W006", Name: "Tom", Role: "Goods Inspector", Efficiency: 74},
		{ID: "W007", Name: "Priya", Role: "AP Specialist", Efficiency: 90},
		{ID: "W008", Name: "Lucas", Role: "Buyer", Efficiency: 70},
	}
}

// Load reads a roster file. Entries are normalized and duplicate ids rejected.
func Load(path string) ([]Worker, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw []Worker
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse worker roster: %w", err)
	}
	seen := map[string]struct{}{}
	workers := make([]Worker, 0, len(raw))
	for _, entry := range raw {
		normalized, err := entry.Normalize()
		if err != nil {
			return nil, err
		}
		if _, ok := seen[normalized.ID]; ok {
			return nil, fmt.Errorf("duplicate worker id %s in roster", normalized.ID)
		}
		seen[normalized.ID] = struct{}{}
		workers = append(workers, normalized)
	}
	if len(workers) == 0 {
		return nil, errors.New("worker roster is empty")
	}
	return workers, nil
}
