package autoscroll

import "testing"

func newTestController() *Controller {
	c := New(4, 3)
	c.SetRegion("assignments", 2, 20)
	c.SetRegion("pool", 24, 40)
	return c
}

func TestStartsInactive(t *testing.T) {
	c := newTestController()
	c.Pointer(0, 2)
	if got := c.Tick(); got != nil {
		t.Fatalf("inactive controller must not scroll, got %+v", got)
	}
}

func TestTopEdgeScrollsUpAtFullIntensity(t *testing.T) {
	c := newTestController()
	c.Start()
	c.Pointer(0, 2) // exactly on the top boundary: intensity 1
	deltas := c.Tick()
	if len(deltas) != 1 {
		t.Fatalf("expected one delta, got %+v", deltas)
	}
	if deltas[0].Region != "assignments" || deltas[0].Lines != -3 {
		t.Fatalf("expected full-speed upward scroll, got %+v", deltas[0])
	}
}

func TestIntensityFallsOffAcrossTheBand(t *testing.T) {
	c := newTestController()
	c.Start()
	c.Pointer(0, 40) // bottom boundary of pool
	full := c.Tick()[0].Lines
	c.Pointer(0, 37) // three rows into a four-row band
	faint := c.Tick()[0].Lines
	if full != 3 {
		t.Fatalf("boundary scroll = %d, want 3", full)
	}
	if faint != 1 {
		t.Fatalf("inner-band scroll = %d, want minimum of 1", faint)
	}
	c.Pointer(0, 32) // outside both bands
	if got := c.Tick(); got != nil {
		t.Fatalf("mid-region pointer must not scroll, got %+v", got)
	}
}

func TestStopCancelsUnconditionally(t *testing.T) {
	c := newTestController()
	c.Start()
	c.Pointer(0, 2)
	if len(c.Tick()) == 0 {
		t.Fatalf("expected active scroll before stop")
	}
	c.Stop()
	if got := c.Tick(); got != nil {
		t.Fatalf("stop must cancel immediately, got %+v", got)
	}
}

func TestRegionsAreIndependent(t *testing.T) {
	c := New(4, 3)
	// Adjacent regions whose bands both cover row 21.
	c.SetRegion("assignments", 2, 22)
	c.SetRegion("pool", 19, 40)
	c.Start()
	c.Pointer(0, 21)
	deltas := c.Tick()
	if len(deltas) != 2 {
		t.Fatalf("both regions should scroll this tick, got %+v", deltas)
	}
	if deltas[0].Region != "assignments" || deltas[0].Lines <= 0 {
		t.Fatalf("assignments region should scroll down toward its bottom edge, got %+v", deltas[0])
	}
	if deltas[1].Region != "pool" || deltas[1].Lines >= 0 {
		t.Fatalf("pool region should scroll up toward its top edge, got %+v", deltas[1])
	}
}

func TestTickWithoutPointerSampleIsQuiet(t *testing.T) {
	c := newTestController()
	c.Start()
	if got := c.Tick(); got != nil {
		t.Fatalf("no pointer sample yet, got %+v", got)
	}
}
