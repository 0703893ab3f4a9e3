// internal/autoscroll/autoscroll.go
//
// Edge-band auto-scroll for drag gestures. While a drag is active the view
// layer runs one fixed-rate tick loop; each tick reads the last sampled
// pointer position and asks the controller how far to scroll each region.
// Sampling and scroll application are deliberately decoupled: pointer
// events only record position, the tick loop does the work, so movement
// stays smooth even when pointer events arrive sparsely.

package autoscroll

import "math"

// Direction of a scroll delta.
const (
	Up   = -1
	Down = 1
)

// Region is a vertically scrollable band of the screen, bounds inclusive.
type Region struct {
	Top    int
	Bottom int
}

// Delta is one region's scroll instruction for the current tick.
type Delta struct {
	Region string
	Lines  int // positive values scroll Down, negative Up
}

// Controller tracks drag state, the last known pointer position, and the
// registered regions. It starts inactive and zeroed.
type Controller struct {
	edge    int
	speed   float64
	active  bool
	sampled bool
	x, y    int
	order   []string
	regions map[string]Region
}

// New creates a controller with the given edge-band width and maximum
// per-tick scroll speed, both in rows.
func New(edge int, speed float64) *Controller {
	if edge < 1 {
		edge = 1
	}
	if speed <= 0 {
		speed = 1
	}
	return &Controller{edge: edge, speed: speed, regions: map[string]Region{}}
}

// SetRegion registers or updates a scrollable region's bounds. Regions
// survive Start/Stop cycles; only pointer state resets.
func (c *Controller) SetRegion(id string, top, bottom int) {
	if _, ok := c.regions[id]; !ok {
		c.order = append(c.order, id)
	}
	c.regions[id] = Region{Top: top, Bottom: bottom}
}

// Start arms the controller for a new drag gesture.
func (c *Controller) Start() {
	c.active = true
	c.sampled = false
}

// Stop disarms the controller unconditionally. The next Tick emits nothing
// regardless of where the pointer was when the drag ended.
func (c *Controller) Stop() {
	c.active = false
	c.sampled = false
}

// Active reports whether a drag gesture is in progress.
func (c *Controller) Active() bool {
	return c.active
}

// Pointer records the latest pointer position. Cheap enough to call on
// every raw motion event.
func (c *Controller) Pointer(x, y int) {
	c.x, c.y = x, y
	c.sampled = true
}

// Tick computes this frame's scroll deltas. Both regions can be active in
// the same tick; a region outside whose bands the pointer sits contributes
// nothing.
func (c *Controller) Tick() []Delta {
	if !c.active || !c.sampled {
		return nil
	}
	var deltas []Delta
	for _, id := range c.order {
		r := c.regions[id]
		if r.Bottom <= r.Top || c.y < r.Top || c.y > r.Bottom {
			continue
		}
		topDist := c.y - r.Top
		bottomDist := r.Bottom - c.y
		switch {
		case topDist < c.edge && topDist <= bottomDist:
			deltas = append(deltas, Delta{Region: id, Lines: Up * c.lines(topDist)})
		case bottomDist < c.edge:
			deltas = append(deltas, Delta{Region: id, Lines: Down * c.lines(bottomDist)})
		}
	}
	return deltas
}

// lines converts a distance into the band to a scroll magnitude:
// intensity = 1 - dist/edge, scaled by speed, never below one row while
// inside the band.
func (c *Controller) lines(dist int) int {
	intensity := 1 - float64(dist)/float64(c.edge)
	n := int(math.Round(c.speed * intensity))
	if n < 1 {
		n = 1
	}
	return n
}
