package telemetry

import "math"

// Collector accumulates events within fixed-duration windows and produces
// WindowStats at each window boundary.
type Collector struct {
	windowDurationTicks int64
	secPerTick          float64

	windowStartTick int64

	births int
	deaths int
	kills  int
}

// NewCollector creates a collector with windows of windowDurationSec
// simulation seconds. dt is the seconds per tick. The tick count is rounded,
// not truncated: a float32 dt of 0.1 must still give 10-tick windows for a
// one second duration.
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int64(math.Round(windowDurationSec / float64(dt)))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}
	return &Collector{
		windowDurationTicks: ticksPerWindow,
		secPerTick:          windowDurationSec / float64(ticksPerWindow),
	}
}

// RecordBirths adds n birth events to the current window.
func (c *Collector) RecordBirths(n int) {
	c.births += n
}

// RecordDeaths adds n death events to the current window.
func (c *Collector) RecordDeaths(n int) {
	c.deaths += n
}

// RecordKills adds n predation kills to the current window.
func (c *Collector) RecordKills(n int) {
	c.kills += n
}

// WindowEnded reports whether the given tick closes the current window.
func (c *Collector) WindowEnded(tick int64) bool {
	return tick-c.windowStartTick >= c.windowDurationTicks
}

// EndWindow produces the stats for the window ending at tick and starts a new
// one. preyEnergy and predEnergy are per-entity energy fractions sampled at
// window end; both slices are sorted in place.
func (c *Collector) EndWindow(tick int64, preyCount, predCount int, preyEnergy, predEnergy []float64) WindowStats {
	prey := summarize(preyEnergy)
	pred := summarize(predEnergy)

	ws := WindowStats{
		WindowEndTick: tick,
		SimTimeSec:    float64(tick) * c.secPerTick,

		PreyCount:     preyCount,
		PredatorCount: predCount,
		TotalCount:    preyCount + predCount,

		Births: c.births,
		Deaths: c.deaths,
		Kills:  c.kills,

		PreyEnergyMean: prey.Mean,
		PreyEnergyStd:  prey.Std,
		PreyEnergyP10:  prey.P10,
		PreyEnergyP50:  prey.P50,
		PreyEnergyP90:  prey.P90,

		PredEnergyMean: pred.Mean,
		PredEnergyStd:  pred.Std,
		PredEnergyP10:  pred.P10,
		PredEnergyP50:  pred.P50,
		PredEnergyP90:  pred.P90,
	}

	c.windowStartTick = tick
	c.births = 0
	c.deaths = 0
	c.kills = 0

	return ws
}
