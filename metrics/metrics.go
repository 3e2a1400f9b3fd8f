package metrics

import "github.com/prometheus/client_golang/prometheus"

// Set bundles the Prometheus collectors shared by the websocket
// managers.
type Set struct {
	Connections *prometheus.GaugeVec
	Events      *prometheus.CounterVec
	Broadcasts  *prometheus.CounterVec
}

func NewSet(reg prometheus.Registerer) *Set {
	s := &Set{
		Connections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gamehub_ws_connections",
			Help: "Open websocket connections.",
		}, []string{"game"}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gamehub_ws_events_total",
			Help: "Inbound events routed to rule modules.",
		}, []string{"game", "type"}),
		Broadcasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gamehub_ws_broadcasts_total",
			Help: "Fan-out passes delivered to rooms.",
		}, []string{"game"}),
	}

	reg.MustRegister(s.Connections, s.Events, s.Broadcasts)

	return s
}

// RegisterRoomCount tracks the live room count of one registry.
func RegisterRoomCount(reg prometheus.Registerer, game string, count func() int) {
	reg.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name:        "gamehub_active_rooms",
			Help:        "Rooms currently live in the registry.",
			ConstLabels: prometheus.Labels{"game": game},
		},
		func() float64 { return float64(count()) },
	))
}
