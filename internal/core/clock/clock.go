package clock

// Clock reports simulation time in seconds.
type Clock interface {
	Now() float64
}

// Sim is the frame-stepped simulation clock. Only the clock system advances it.
type Sim struct {
	now float64
}

func NewSim() *Sim { return &Sim{} }

func (c *Sim) Now() float64 { return c.now }

// Advance moves time forward by dt seconds. Negative steps are ignored.
func (c *Sim) Advance(dt float64) {
	if dt > 0 {
		c.now += dt
	}
}

// Manual is a settable clock for tests and replays.
type Manual struct {
	T float64
}

func (c *Manual) Now() float64 { return c.T }
func (c *Manual) Set(t float64) { c.T = t }
func (c *Manual) Add(dt float64) { c.T += dt }
