package main

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects solver counters. Register it on a dedicated registry per
// process; a nil *Metrics is a valid no-op.
type Metrics struct {
	iterations   *prometheus.CounterVec
	improvements *prometheus.CounterVec
	solutionSize *prometheus.HistogramVec
	moves        *prometheus.CounterVec
	alphaProb    *prometheus.GaugeVec
	rebalances   *prometheus.CounterVec
}

// NewMetrics creates the solver metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		iterations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grasp_iterations_total",
			Help: "Completed construct + local search iterations",
		}, []string{"instance"}),
		improvements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grasp_incumbent_improvements_total",
			Help: "Iterations that replaced the incumbent",
		}, []string{"instance"}),
		solutionSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "grasp_constructed_solution_size",
			Help:    "Number of elements selected by the constructive heuristic",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"instance"}),
		moves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grasp_local_search_moves_total",
			Help: "Accepted local search moves by neighborhood",
		}, []string{"instance", "neighborhood"}),
		alphaProb: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "grasp_alpha_probability",
			Help: "Current selection probability of each alpha in the pool",
		}, []string{"instance", "alpha"}),
		rebalances: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grasp_alpha_rebalances_total",
			Help: "Reactive alpha probability rebalances",
		}, []string{"instance"}),
	}
	reg.MustRegister(m.iterations, m.improvements, m.solutionSize, m.moves, m.alphaProb, m.rebalances)
	return m
}

func (m *Metrics) observeIteration(instance string, constructed int, moves [3]int, improved bool) {
	if m == nil {
		return
	}
	m.iterations.WithLabelValues(instance).Inc()
	m.solutionSize.WithLabelValues(instance).Observe(float64(constructed))
	for nb, c := range moves {
		if c > 0 {
			m.moves.WithLabelValues(instance, Neighborhood(nb).String()).Add(float64(c))
		}
	}
	if improved {
		m.improvements.WithLabelValues(instance).Inc()
	}
}

func (m *Metrics) observeRebalance(instance string, pool, probs []float64) {
	if m == nil {
		return
	}
	m.rebalances.WithLabelValues(instance).Inc()
	m.setAlphaProbabilities(instance, pool, probs)
}

func (m *Metrics) setAlphaProbabilities(instance string, pool, probs []float64) {
	if m == nil || len(pool) != len(probs) {
		return
	}
	for i, a := range pool {
		m.alphaProb.WithLabelValues(instance, strconv.FormatFloat(a, 'g', -1, 64)).Set(probs[i])
	}
}
