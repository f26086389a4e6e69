package collector

import (
	"sync/atomic"
	"trafficsense/internal/models"
)

// Register is a single slot holding the latest sample. Writes replace the whole value.
type Register struct {
	latest atomic.Pointer[models.CountSample]
}

// Store replaces the held sample.
func (r *Register) Store(sample models.CountSample) {
	r.latest.Store(&sample)
}

// Load returns the last stored sample, or false when nothing was stored yet.
func (r *Register) Load() (models.CountSample, bool) {
	p := r.latest.Load()
	if p == nil {
		return models.CountSample{}, false
	}
	return *p, true
}
