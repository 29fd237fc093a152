package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"termsnake.ai/internal/sim/game"
)

// SessionCollector bundles the game metrics and satisfies session.Observer.
type SessionCollector struct {
	gatherer prometheus.Gatherer

	Ticks      prometheus.Counter
	FoodEaten  prometheus.Counter
	GameOvers  *prometheus.CounterVec
	Turns      *prometheus.CounterVec
	Resizes    prometheus.Counter
	Sessions   *prometheus.CounterVec
	FinalScore prometheus.Histogram

	Length prometheus.Gauge
	Score  prometheus.Gauge
}

// NewSessionCollector registers against reg, defaulting to the global
// registry when nil. Registering twice reuses the existing collectors.
func NewSessionCollector(reg prometheus.Registerer) (*SessionCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	ticks, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "snake_ticks_total",
		Help: "Simulation steps applied.",
	}), "snake_ticks_total")
	if err != nil {
		return nil, err
	}
	food, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "snake_food_eaten_total",
		Help: "Food items eaten.",
	}), "snake_food_eaten_total")
	if err != nil {
		return nil, err
	}
	overs, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "snake_game_overs_total",
		Help: "Games ended by a collision, labeled by cause.",
	}, []string{"cause"}), "snake_game_overs_total")
	if err != nil {
		return nil, err
	}
	turns, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "snake_turn_requests_total",
		Help: "Direction change requests, labeled by result (accepted or rejected).",
	}, []string{"result"}), "snake_turn_requests_total")
	if err != nil {
		return nil, err
	}
	resizes, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "snake_resizes_total",
		Help: "Terminal resizes applied to the world.",
	}), "snake_resizes_total")
	if err != nil {
		return nil, err
	}
	sessions, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "snake_sessions_total",
		Help: "Finished sessions, labeled by end reason.",
	}, []string{"reason"}), "snake_sessions_total")
	if err != nil {
		return nil, err
	}
	final, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "snake_session_score",
		Help:    "Score at the end of a session.",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100, 200, 500},
	}), "snake_session_score")
	if err != nil {
		return nil, err
	}
	length, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "snake_length",
		Help: "Current body length.",
	}), "snake_length")
	if err != nil {
		return nil, err
	}
	score, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "snake_score",
		Help: "Current score.",
	}), "snake_score")
	if err != nil {
		return nil, err
	}

	return &SessionCollector{
		gatherer:   gatherer,
		Ticks:      ticks,
		FoodEaten:  food,
		GameOvers:  overs,
		Turns:      turns,
		Resizes:    resizes,
		Sessions:   sessions,
		FinalScore: final,
		Length:     length,
		Score:      score,
	}, nil
}

func (c *SessionCollector) ObserveTick(res game.TickResult, v game.View) {
	if c == nil || !res.Moved {
		return
	}
	c.Ticks.Inc()
	if res.Ate {
		c.FoodEaten.Inc()
	}
	if res.Died {
		c.GameOvers.WithLabelValues(string(res.Cause)).Inc()
	}
	c.Length.Set(float64(len(v.Body)))
	c.Score.Set(float64(v.Score))
}

func (c *SessionCollector) ObserveTurn(accepted bool) {
	if c == nil {
		return
	}
	result := "rejected"
	if accepted {
		result = "accepted"
	}
	c.Turns.WithLabelValues(result).Inc()
}

func (c *SessionCollector) ObserveResize() {
	if c == nil {
		return
	}
	c.Resizes.Inc()
}

func (c *SessionCollector) ObserveSessionEnd(reason string, score uint64) {
	if c == nil {
		return
	}
	c.Sessions.WithLabelValues(reason).Inc()
	c.FinalScore.Observe(float64(score))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SessionCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return c, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerGauge(reg prometheus.Registerer, g prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(g); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return g, nil
}
