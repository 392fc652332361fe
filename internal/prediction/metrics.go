package prediction

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess   = "success"
	outcomeMalformed = "malformed"
	outcomeFailed    = "failed"
)

var (
	predictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matchpredict_predictions_total",
		Help: "Total number of prediction calls by outcome",
	}, []string{"outcome"})

	predictionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "matchpredict_prediction_duration_seconds",
		Help:    "Duration of prediction calls to the LLM provider",
		Buckets: []float64{0.5, 1, 2, 4, 8, 15, 30, 60},
	})
)
