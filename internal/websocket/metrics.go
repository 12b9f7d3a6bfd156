package websocket

import "github.com/prometheus/client_golang/prometheus"

var (
	wsConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "typing_board_ws_connections",
			Help: "Current number of active websocket connections.",
		},
	)
	wsMessagesDelivered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "typing_board_ws_messages_delivered_total",
			Help: "Total websocket messages queued for delivery.",
		},
	)
	wsMessagesDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "typing_board_ws_messages_dropped_total",
			Help: "Total websocket messages dropped for slow or gone clients.",
		},
	)
)

func init() {
	prometheus.MustRegister(wsConnections, wsMessagesDelivered, wsMessagesDropped)
}

func incConnections() {
	wsConnections.Inc()
}

func decConnections() {
	wsConnections.Dec()
}

func incDelivered() {
	wsMessagesDelivered.Inc()
}

func incDropped() {
	wsMessagesDropped.Inc()
}
