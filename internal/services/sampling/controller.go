package sampling

import (
	"time"
	"trafficsense/internal/models"
)

// Controller gates the pipeline on two cadences: detection runs on every Nth frame only,
// and a count is emitted at most once per emission interval. Not safe for concurrent use.
type Controller struct {
	processEveryNth int
	emitInterval    time.Duration
	now             func() time.Time

	frameCounter int
	lastEmit     time.Time
	hasEmitted   bool
}

// NewController creates a Controller. processEveryNth below 1 is treated as 1 and a nil
// clock defaults to time.Now.
func NewController(processEveryNth int, emitInterval time.Duration, now func() time.Time) *Controller {
	if processEveryNth < 1 {
		processEveryNth = 1
	}
	if now == nil {
		now = time.Now
	}
	return &Controller{
		processEveryNth: processEveryNth,
		emitInterval:    emitInterval,
		now:             now,
	}
}

// ShouldProcess registers one incoming frame and reports whether it goes to the detector.
// Skipped frames are neither buffered nor detected.
func (c *Controller) ShouldProcess() bool {
	c.frameCounter++
	if c.frameCounter%c.processEveryNth != 0 {
		return false
	}
	c.frameCounter = 0
	return true
}

// Offer hands the latest processed count to the controller. It returns a sample when the
// emission interval has elapsed since the previous emission; otherwise the count is dropped.
func (c *Controller) Offer(count int) (models.CountSample, bool) {
	now := c.now()
	if c.hasEmitted && now.Sub(c.lastEmit) < c.emitInterval {
		return models.CountSample{}, false
	}
	c.lastEmit = now
	c.hasEmitted = true
	return models.CountSample{Timestamp: now, Count: count}, true
}

// ProcessEveryNth returns the frame-skip ratio.
func (c *Controller) ProcessEveryNth() int {
	return c.processEveryNth
}
