// Package telemetry aggregates simulation events into windowed statistics
// and writes them as CSV for offline analysis.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for one time window.
type WindowStats struct {
	WindowEndTick int64   `csv:"window_end"`
	SimTimeSec    float64 `csv:"sim_time"`

	// Population counts at window end
	PreyCount     int `csv:"prey"`
	PredatorCount int `csv:"predators"`
	TotalCount    int `csv:"total"`

	// Events during the window
	Births int `csv:"births"`
	Deaths int `csv:"deaths"`
	Kills  int `csv:"kills"`

	// Energy distribution sampled at window end, as fractions of max energy
	PreyEnergyMean float64 `csv:"prey_energy_mean"`
	PreyEnergyStd  float64 `csv:"prey_energy_std"`
	PreyEnergyP10  float64 `csv:"prey_energy_p10"`
	PreyEnergyP50  float64 `csv:"prey_energy_p50"`
	PreyEnergyP90  float64 `csv:"prey_energy_p90"`

	PredEnergyMean float64 `csv:"pred_energy_mean"`
	PredEnergyStd  float64 `csv:"pred_energy_std"`
	PredEnergyP10  float64 `csv:"pred_energy_p10"`
	PredEnergyP50  float64 `csv:"pred_energy_p50"`
	PredEnergyP90  float64 `csv:"pred_energy_p90"`
}

// Log emits the window summary as a structured log record.
func (ws *WindowStats) Log() {
	slog.Info("window stats",
		"tick", ws.WindowEndTick,
		"sim_time", ws.SimTimeSec,
		"prey", ws.PreyCount,
		"predators", ws.PredatorCount,
		"births", ws.Births,
		"deaths", ws.Deaths,
		"kills", ws.Kills,
		"prey_energy_p50", ws.PreyEnergyP50,
		"pred_energy_p50", ws.PredEnergyP50,
	)
}

// distribution summarizes a sample of energy fractions. The input slice is
// sorted in place.
type distribution struct {
	Mean, Std, P10, P50, P90 float64
}

func summarize(samples []float64) distribution {
	if len(samples) == 0 {
		return distribution{}
	}
	sort.Float64s(samples)
	mean, std := stat.MeanStdDev(samples, nil)
	if len(samples) < 2 {
		std = 0
	}
	return distribution{
		Mean: mean,
		Std:  std,
		P10:  stat.Quantile(0.1, stat.Empirical, samples, nil),
		P50:  stat.Quantile(0.5, stat.Empirical, samples, nil),
		P90:  stat.Quantile(0.9, stat.Empirical, samples, nil),
	}
}
