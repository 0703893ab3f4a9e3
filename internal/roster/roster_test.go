package roster

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsAreValid(t *testing.T) {
	seen := map[string]struct{}{}
	for _, w := range Defaults() {
		if _, err := w.Normalize(); err != nil {
			t.Fatalf("seed worker %s invalid: %v", w.ID, err)
		}
		if _, ok := seen[w.ID]; ok {
			t.Fatalf("duplicate seed worker id %s", w.ID)
		}
		seen[w.ID] = struct{}{}
	}
}

func TestNormalizeRejectsBadEfficiency(t *testing.T) {
	_, err := Worker{ID: "W100", Name: "Ada", Efficiency: 140}.Normalize()
	if err == nil {
		t.Fatalf("expected out-of-range efficiency to be rejected")
	}
}

func TestLoadRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workers.yaml")
	body := "- id: W010\n  name: Noor\n  role: Approver\n  efficiency: 77\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write roster: %v", err)
	}
	workers, err := Load(path)
	if err != nil {
		t.Fatalf("load roster: %v", err)
	}
	if len(workers) != 1 || workers[0].ID != "W010" || workers[0].Efficiency != 77 {
		t.Fatalf("unexpected roster: %+v", workers)
	}
}

func TestLoadRosterRejectsDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workers.yaml")
	body := "- id: W010\n  name: Noor\n  efficiency: 77\n- id: W010\n  name: Noor\n  efficiency: 70\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write roster: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected duplicate id to fail")
	}
}
