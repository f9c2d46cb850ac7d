package metrics

import (
	"math"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const (
	recommendOutcomesMetric = "lumiere_recommend_outcomes_total"
	recommendLatencyMetric  = "lumiere_recommend_latency_seconds"
)

// RecommendSnapshot summarises recommendation traffic for the ops endpoint.
type RecommendSnapshot struct {
	Outcomes map[string]int64 `json:"outcomes"`
	Calls    int64            `json:"calls"`
	P50Ms    float64          `json:"p50_ms"`
	P95Ms    float64          `json:"p95_ms"`
}

// SnapshotRecommend reads the recommendation counters and latency histogram
// back out of gatherer. Missing families yield zero values.
func SnapshotRecommend(gatherer prometheus.Gatherer) RecommendSnapshot {
	snap := RecommendSnapshot{Outcomes: map[string]int64{}}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mfs, err := gatherer.Gather()
	if err != nil {
		return snap
	}

	cumulativeByUpper := map[float64]uint64{}
	var samples uint64
	for _, mf := range mfs {
		switch mf.GetName() {
		case recommendOutcomesMetric:
			for _, metric := range mf.Metric {
				outcome := labelValue(metric, "outcome")
				snap.Outcomes[outcome] += int64(metric.GetCounter().GetValue())
			}
		case recommendLatencyMetric:
			for _, metric := range mf.Metric {
				h := metric.GetHistogram()
				if h == nil {
					continue
				}
				samples += h.GetSampleCount()
				for _, b := range h.Bucket {
					cumulativeByUpper[b.GetUpperBound()] += b.GetCumulativeCount()
				}
			}
		}
	}
	if samples == 0 {
		return snap
	}

	uppers := make([]float64, 0, len(cumulativeByUpper))
	for upper := range cumulativeByUpper {
		uppers = append(uppers, upper)
	}
	sort.Float64s(uppers)

	snap.Calls = int64(samples)
	snap.P50Ms = quantile(0.50, samples, uppers, cumulativeByUpper) * 1000
	snap.P95Ms = quantile(0.95, samples, uppers, cumulativeByUpper) * 1000
	return snap
}

func labelValue(metric *dto.Metric, name string) string {
	for _, lp := range metric.Label {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

// quantile interpolates linearly inside the bucket holding the q-th sample.
// Samples in the +Inf bucket report the last finite bound.
func quantile(q float64, total uint64, uppers []float64, cumulativeByUpper map[float64]uint64) float64 {
	target := q * float64(total)
	var prevUpper, prevCum float64
	for _, upper := range uppers {
		cum := float64(cumulativeByUpper[upper])
		if cum < target {
			prevUpper, prevCum = upper, cum
			continue
		}
		if math.IsInf(upper, 1) {
			return prevUpper
		}
		width := cum - prevCum
		if width <= 0 {
			return upper
		}
		return prevUpper + (target-prevCum)/width*(upper-prevUpper)
	}
	return prevUpper
}
