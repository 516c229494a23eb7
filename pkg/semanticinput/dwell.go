package semanticinput

import (
	"math"
	"time"
)

const (
	defaultDwellTolerance = 0.05
	defaultDwellDuration  = 1500 * time.Millisecond
)

// DwellClick implements eye-tracking dwell-click: a fixation held within
// a tolerance radius for the dwell duration fires a Select event once,
// then rearms only after the gaze moves outside the tolerance.
type DwellClick struct {
	Tolerance float64
	Duration  time.Duration
	now       func() time.Time

	anchorX, anchorY float64
	started          time.Time
	tracking         bool
	fired            bool
}

// NewDwellClick builds a DwellClick with the default 5% tolerance and
// 1.5s duration.
func NewDwellClick() *DwellClick {
	return &DwellClick{
		Tolerance: defaultDwellTolerance,
		Duration:  defaultDwellDuration,
		now:       time.Now,
	}
}

// Update feeds a normalized gaze sample (x,y in [0,1]) and returns true
// exactly once per fixation once the dwell duration has elapsed within
// tolerance.
func (d *DwellClick) Update(x, y float64) bool {
	now := d.now()

	if !d.tracking {
		d.beginFixation(x, y, now)
		return false
	}

	dist := math.Hypot(x-d.anchorX, y-d.anchorY)
	if dist > d.Tolerance {
		d.beginFixation(x, y, now)
		return false
	}

	if d.fired {
		return false
	}
	if now.Sub(d.started) >= d.Duration {
		d.fired = true
		return true
	}
	return false
}

func (d *DwellClick) beginFixation(x, y float64, at time.Time) {
	d.anchorX, d.anchorY = x, y
	d.started = at
	d.tracking = true
	d.fired = false
}
