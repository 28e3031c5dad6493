package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	threadCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "feedback",
			Name:      "thread_cache_requests_total",
			Help:      "Thread list reads by cache result",
		},
		[]string{"result"},
	)

	threadViews = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "feedback",
			Name:      "thread_views_total",
			Help:      "Registered thread views by whether they were counted",
		},
		[]string{"counted"},
	)
)
