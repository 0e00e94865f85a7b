package telemetry

import "log/slog"

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int64
	dt                  float64
	windowStartTick     int64

	births      int
	deaths      int
	starved     int
	bitesLanded int
}

// NewCollector creates a stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick
func NewCollector(windowDurationSec float64, dt float64) *Collector {
	ticksPerWindow := int64(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}
	return &Collector{
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordBirth records a birth event.
func (c *Collector) RecordBirth() {
	c.births++
}

// RecordDeath records a death; starved marks deaths from energy exhaustion.
func (c *Collector) RecordDeath(starved bool) {
	c.deaths++
	if starved {
		c.starved++
	}
}

// RecordBite records a successful feeding bite.
func (c *Collector) RecordBite() {
	c.bitesLanded++
}

// WindowClosed reports whether the current window ends at this tick.
func (c *Collector) WindowClosed(tick int64) bool {
	return tick-c.windowStartTick >= c.windowDurationTicks
}

// Flush closes the current window: it emits a WindowStats with the event
// counters filled in, resets them, and starts the next window. Distribution
// fields are left for the caller to sample.
func (c *Collector) Flush(tick int64) WindowStats {
	stats := WindowStats{
		WindowEndTick: tick,
		SimTimeSec:    float64(tick) * c.dt,
		Births:        c.births,
		Deaths:        c.deaths,
		Starved:       c.starved,
		BitesLanded:   c.bitesLanded,
	}

	c.births = 0
	c.deaths = 0
	c.starved = 0
	c.bitesLanded = 0
	c.windowStartTick = tick

	return stats
}

// Log emits a window summary through slog.
func (s WindowStats) Log() {
	slog.Info("window stats",
		"tick", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"population", s.Population,
		"births", s.Births,
		"deaths", s.Deaths,
		"starved", s.Starved,
		"energy_mean", s.EnergyMean,
		"nodes_mean", s.NodesMean,
	)
}
