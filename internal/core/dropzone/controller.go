// Package dropzone tracks nested enter/leave events for one logical drop
// target and turns them into a single overlay visibility flag.
package dropzone

import "sync"

// Controller counts enters and leaves across the child regions of a drop
// target. The overlay is visible while the count is positive.
type Controller struct {
	mu    sync.Mutex
	count int
}

// Enter records the pointer entering the zone or one of its children.
func (c *Controller) Enter() {
	c.mu.Lock()
	c.count++
	c.mu.Unlock()
}

// Leave records the pointer leaving the zone or one of its children. The
// count never goes below zero.
func (c *Controller) Leave() {
	c.mu.Lock()
	if c.count > 0 {
		c.count--
	}
	c.mu.Unlock()
}

// Drop resets the counter and hides the overlay whatever its prior state.
func (c *Controller) Drop() {
	c.mu.Lock()
	c.count = 0
	c.mu.Unlock()
}

// Visible reports whether the drop overlay should be shown.
func (c *Controller) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count > 0
}

// Count returns the current nesting depth.
func (c *Controller) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}
