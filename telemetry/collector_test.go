package telemetry

import (
	"math"
	"testing"
)

func TestCollectorWindowBoundaries(t *testing.T) {
	c := NewCollector(1.0, 0.1) // 10 ticks per window

	if c.WindowEnded(9) {
		t.Errorf("window should still be open at tick 9")
	}
	if !c.WindowEnded(10) {
		t.Errorf("window should close at tick 10")
	}

	c.EndWindow(10, 0, 0, nil, nil)
	if c.WindowEnded(15) {
		t.Errorf("new window should run until tick 20")
	}
	if !c.WindowEnded(20) {
		t.Errorf("second window should close at tick 20")
	}
}

func TestCollectorRoundsTickCountUnderFloat32DT(t *testing.T) {
	// 10 s / (1/60 s) is not exact in float32; truncation would give 599.
	c := NewCollector(10.0, float32(1.0/60.0))

	if c.WindowEnded(599) {
		t.Errorf("window should still be open at tick 599")
	}
	if !c.WindowEnded(600) {
		t.Errorf("window should close at tick 600")
	}

	ws := c.EndWindow(600, 0, 0, nil, nil)
	if math.Abs(ws.SimTimeSec-10.0) > 1e-9 {
		t.Errorf("sim time = %v, want 10.0", ws.SimTimeSec)
	}
}

func TestCollectorAggregatesAndResets(t *testing.T) {
	c := NewCollector(1.0, 0.1)

	c.RecordBirths(3)
	c.RecordDeaths(2)
	c.RecordKills(1)

	ws := c.EndWindow(10, 100, 5, nil, nil)
	if ws.Births != 3 || ws.Deaths != 2 || ws.Kills != 1 {
		t.Errorf("events lost: %+v", ws)
	}
	if ws.PreyCount != 100 || ws.PredatorCount != 5 || ws.TotalCount != 105 {
		t.Errorf("counts wrong: %+v", ws)
	}
	if ws.SimTimeSec != 1.0 {
		t.Errorf("sim time = %f, want 1.0", ws.SimTimeSec)
	}

	ws = c.EndWindow(20, 100, 5, nil, nil)
	if ws.Births != 0 || ws.Deaths != 0 || ws.Kills != 0 {
		t.Errorf("counters must reset between windows: %+v", ws)
	}
}

func TestCollectorEnergyDistribution(t *testing.T) {
	c := NewCollector(1.0, 0.1)

	prey := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}
	ws := c.EndWindow(10, len(prey), 0, prey, nil)

	if math.Abs(ws.PreyEnergyMean-0.55) > 1e-9 {
		t.Errorf("mean = %f, want 0.55", ws.PreyEnergyMean)
	}
	if ws.PreyEnergyP10 > ws.PreyEnergyP50 || ws.PreyEnergyP50 > ws.PreyEnergyP90 {
		t.Errorf("quantiles out of order: p10=%f p50=%f p90=%f",
			ws.PreyEnergyP10, ws.PreyEnergyP50, ws.PreyEnergyP90)
	}
	if ws.PreyEnergyP50 < 0.4 || ws.PreyEnergyP50 > 0.6 {
		t.Errorf("median %f far from 0.5", ws.PreyEnergyP50)
	}

	// Empty sample must not blow up.
	if ws.PredEnergyMean != 0 || ws.PredEnergyP50 != 0 {
		t.Errorf("empty predator sample should produce zeros")
	}
}

func TestPerfTrackerAveragesOverWindow(t *testing.T) {
	p := NewPerfTracker(2)

	p.Begin(PhaseGrid)
	p.End(PhaseGrid)
	if _, ok := p.EndTick(1, 10); ok {
		t.Errorf("window of 2 must not close after 1 tick")
	}

	p.Begin(PhaseGrid)
	p.End(PhaseGrid)
	rec, ok := p.EndTick(2, 10)
	if !ok {
		t.Fatalf("window should close after 2 ticks")
	}
	if rec.Entities != 10 || rec.Tick != 2 {
		t.Errorf("record metadata wrong: %+v", rec)
	}
	if rec.TotalUs < 0 {
		t.Errorf("negative timing: %+v", rec)
	}
}
