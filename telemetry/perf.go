package telemetry

import "time"

// Phase identifies one stage of the simulation tick for timing purposes.
type Phase int

const (
	PhaseGrid Phase = iota
	PhaseFlocking
	PhaseHunting
	PhasePopulation
	PhaseMovement

	numPhases
)

// PerfRecord is one averaged timing sample, in microseconds per tick.
type PerfRecord struct {
	Tick       int64   `csv:"tick"`
	Entities   int     `csv:"entities"`
	TotalUs    float64 `csv:"total_us"`
	GridUs     float64 `csv:"grid_us"`
	FlockingUs float64 `csv:"flocking_us"`
	HuntingUs  float64 `csv:"hunting_us"`
	PopUs      float64 `csv:"population_us"`
	MovementUs float64 `csv:"movement_us"`
}

// PerfTracker averages per-phase tick timings over a fixed number of ticks.
type PerfTracker struct {
	window int
	ticks  int

	accum [numPhases]time.Duration
	start [numPhases]time.Time
}

// NewPerfTracker creates a tracker that averages over window ticks.
func NewPerfTracker(window int) *PerfTracker {
	if window < 1 {
		window = 1
	}
	return &PerfTracker{window: window}
}

// Begin marks the start of a phase in the current tick.
func (p *PerfTracker) Begin(phase Phase) {
	p.start[phase] = time.Now()
}

// End accumulates the elapsed time for a phase.
func (p *PerfTracker) End(phase Phase) {
	p.accum[phase] += time.Since(p.start[phase])
}

// EndTick closes one tick. When the averaging window is full it returns a
// record and resets; otherwise ok is false.
func (p *PerfTracker) EndTick(tick int64, entities int) (rec PerfRecord, ok bool) {
	p.ticks++
	if p.ticks < p.window {
		return PerfRecord{}, false
	}

	n := float64(p.ticks)
	us := func(ph Phase) float64 {
		return float64(p.accum[ph].Microseconds()) / n
	}

	rec = PerfRecord{
		Tick:       tick,
		Entities:   entities,
		GridUs:     us(PhaseGrid),
		FlockingUs: us(PhaseFlocking),
		HuntingUs:  us(PhaseHunting),
		PopUs:      us(PhasePopulation),
		MovementUs: us(PhaseMovement),
	}
	rec.TotalUs = rec.GridUs + rec.FlockingUs + rec.HuntingUs + rec.PopUs + rec.MovementUs

	p.ticks = 0
	for i := range p.accum {
		p.accum[i] = 0
	}
	return rec, true
}
