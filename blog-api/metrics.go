package main

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	SuccessfulRequests *prometheus.CounterVec
	BadRequests        *prometheus.CounterVec
	FailedRequests     *prometheus.CounterVec
	PostsCreated       *prometheus.CounterVec
	LikesCreated       *prometheus.CounterVec
	LikesDeleted       *prometheus.CounterVec
}

func InitMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SuccessfulRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "successful_request",
				Help: "Total number of successful (2xx) HTTP requests",
			},
			[]string{"path"},
		),
		BadRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "unsuccessful_request",
				Help: "Total number of unsuccessful (4xx) HTTP requests",
			},
			[]string{"path"},
		),
		FailedRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "failed_request",
				Help: "Total number of HTTP requests that hit a store failure (5xx)",
			},
			[]string{"path"},
		),
		PostsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "posts_created",
				Help: "Total number of posts created",
			},
			[]string{"visibility"},
		),
		LikesCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "likes_created",
				Help: "Total number of likes created",
			},
			[]string{"path"},
		),
		LikesDeleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "likes_deleted",
				Help: "Total number of like rows removed by unlike requests",
			},
			[]string{"path"},
		),
	}

	reg.MustRegister(
		m.SuccessfulRequests,
		m.BadRequests,
		m.FailedRequests,
		m.PostsCreated,
		m.LikesCreated,
		m.LikesDeleted,
	)

	return m
}
