// monitor/monitor.go
package monitor

import (
	"expvar"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	ConnectedPlayers prometheus.Gauge
	ActiveGames      prometheus.Gauge
	DiceRolls        prometheus.Counter
	CardsDrawn       prometheus.Counter
	TradesExecuted   prometheus.Counter
	GamesFinished    prometheus.Counter
	ActionLatency    prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		ConnectedPlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected_players",
			Help:      "Number of connected clients",
		}),
		ActiveGames: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_games",
			Help:      "Number of games in progress",
		}),
		DiceRolls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dice_rolls_total",
			Help:      "Total number of dice rolled",
		}),
		CardsDrawn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cards_drawn_total",
			Help:      "Total number of cards drawn",
		}),
		TradesExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_executed_total",
			Help:      "Total number of executed trades and pacts",
		}),
		GamesFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Total number of games played to the end",
		}),
		ActionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "action_latency_seconds",
			Help:      "Player action processing latency",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
		}),
	}

	prometheus.MustRegister(
		m.ConnectedPlayers,
		m.ActiveGames,
		m.DiceRolls,
		m.CardsDrawn,
		m.TradesExecuted,
		m.GamesFinished,
		m.ActionLatency,
	)

	return m
}

type Monitor struct {
	metrics     *Metrics
	startTime   time.Time
	actionCount int64
	mutex       sync.Mutex
}

func NewMonitor(namespace string) *Monitor {
	return &Monitor{
		metrics:   NewMetrics(namespace),
		startTime: time.Now(),
	}
}

func (m *Monitor) StartServer(addr string) {
	http.Handle("/metrics", promhttp.Handler())

	expvar.Publish("uptime", expvar.Func(func() interface{} {
		return time.Since(m.startTime).Seconds()
	}))

	expvar.Publish("actions", expvar.Func(func() interface{} {
		m.mutex.Lock()
		defer m.mutex.Unlock()
		return m.actionCount
	}))

	go http.ListenAndServe(addr, nil)
}

func (m *Monitor) IncConnectedPlayers() {
	m.metrics.ConnectedPlayers.Inc()
}

func (m *Monitor) DecConnectedPlayers() {
	m.metrics.ConnectedPlayers.Dec()
}

func (m *Monitor) SetActiveGames(count int) {
	m.metrics.ActiveGames.Set(float64(count))
}

func (m *Monitor) IncDiceRolls() {
	m.metrics.DiceRolls.Inc()
}

func (m *Monitor) IncCardsDrawn() {
	m.metrics.CardsDrawn.Inc()
}

func (m *Monitor) IncTradesExecuted() {
	m.metrics.TradesExecuted.Inc()
}

func (m *Monitor) IncGamesFinished() {
	m.metrics.GamesFinished.Inc()
}

func (m *Monitor) ObserveActionLatency(duration time.Duration) {
	m.metrics.ActionLatency.Observe(duration.Seconds())
	m.mutex.Lock()
	m.actionCount++
	m.mutex.Unlock()
}
