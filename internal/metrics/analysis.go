package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cognicore/sanskrit/pkg/sanskrit/pipeline"
	"github.com/cognicore/sanskrit/pkg/sanskrit/segment"
)

// Analysis Prometheus metrics.
var (
	SegmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sanskrit",
			Name:      "segments_total",
			Help:      "Tokens segmented, by decision method",
		},
		[]string{"method"},
	)

	TaggedWordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sanskrit",
			Name:      "tagged_words_total",
			Help:      "Words tagged, by tagger mode",
		},
		[]string{"mode"},
	)

	InadmissibleTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sanskrit",
			Name:      "inadmissible_total",
			Help:      "Texts rejected by the script check",
		},
	)

	AnalysisConfidence = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "sanskrit",
			Name:      "analysis_confidence",
			Help:      "Overall confidence of completed analyses",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		},
	)
)

// ObserveAnalysis records one pipeline run.
func ObserveAnalysis(res pipeline.Result) {
	if !res.Admissibility.Admissible {
		InadmissibleTotal.Inc()
		return
	}
	for _, s := range res.Segments {
		SegmentsTotal.WithLabelValues(s.Method.String()).Inc()
	}
	if res.TaggerMode != "" {
		TaggedWordsTotal.WithLabelValues(res.TaggerMode).Add(float64(len(res.Tagged)))
	}
	AnalysisConfidence.Observe(res.Confidence)
}

// ObserveSegment records a single-token segmentation.
func ObserveSegment(r segment.Result) {
	SegmentsTotal.WithLabelValues(r.Method.String()).Inc()
}
