// Package telemetry collects windowed population and brain statistics and
// writes them as CSV for offline analysis.
package telemetry

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for one time window.
type WindowStats struct {
	WindowEndTick int64   `csv:"window_end"`
	SimTimeSec    float64 `csv:"sim_time"`

	// Population at window end
	Population int `csv:"population"`

	// Events during the window
	Births      int `csv:"births"`
	Deaths      int `csv:"deaths"`
	Starved     int `csv:"starved"`
	BitesLanded int `csv:"bites_landed"`

	// Energy distribution, sampled at window end
	EnergyMean float64 `csv:"energy_mean"`
	EnergyP10  float64 `csv:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90"`

	// Brain complexity, sampled at window end
	NodesMean       float64 `csv:"nodes_mean"`
	ConnectionsMean float64 `csv:"connections_mean"`
	MaxGeneration   uint32  `csv:"max_generation"`
}

// SampleEnergy fills the energy distribution fields from a population sample.
func (w *WindowStats) SampleEnergy(values []float64) {
	if len(values) == 0 {
		return
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	w.EnergyMean = stat.Mean(sorted, nil)
	w.EnergyP10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	w.EnergyP50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	w.EnergyP90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
}

// SampleComplexity fills the brain complexity fields.
func (w *WindowStats) SampleComplexity(nodeCounts, connCounts []float64) {
	if len(nodeCounts) > 0 {
		w.NodesMean = stat.Mean(nodeCounts, nil)
	}
	if len(connCounts) > 0 {
		w.ConnectionsMean = stat.Mean(connCounts, nil)
	}
}
