package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики бизнес-операций. HTTP-метрики (латентность, коды ответов)
// снимает gin-prometheus на уровне роутера.
var (
	quotesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_quotes_total",
		Help: "Total number of quote computations by outcome.",
	}, []string{"status"})

	configUpdatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricing_config_updates_total",
		Help: "Total number of successful pricing config updates.",
	})

	cacheClearsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricing_cache_clears_total",
		Help: "Total number of manual pricing cache clears.",
	})
)
