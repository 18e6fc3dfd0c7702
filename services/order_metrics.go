package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	orderSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_submissions_total",
			Help: "Order submissions by outcome",
		},
		[]string{"outcome"},
	)

	ingredientShortfalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingredient_shortfalls_total",
			Help: "Ingredients reported short in rejected submissions",
		},
		[]string{"ingredient"},
	)

	orderSubmitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "order_submission_duration_ms",
			Help:    "Duration of order submissions in ms",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 200, 400, 800, 1600},
		},
		[]string{"outcome"},
	)
)
