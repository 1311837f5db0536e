package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	WsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "signal_ws_connections",
		Help: "Current number of live signaling connections.",
	})
	RoomsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "signal_rooms_active",
		Help: "Current number of live rooms.",
	})
	EventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "signal_events_total",
		Help: "Inbound signaling events processed, by event type.",
	}, []string{"type"})
	ChatMessagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "signal_chat_messages_total",
		Help: "Chat messages appended to room logs.",
	})
)

func init() {
	prometheus.MustRegister(WsConnections, RoomsActive, EventsTotal, ChatMessagesTotal)
}
