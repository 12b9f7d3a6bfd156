package room

import "github.com/prometheus/client_golang/prometheus"

var (
	liveRooms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "typing_board_live_rooms",
			Help: "Current number of live rooms.",
		},
	)
	roomsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "typing_board_rooms_created_total",
			Help: "Total rooms created since start.",
		},
	)
	editsApplied = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "typing_board_edits_applied_total",
			Help: "Total text edits applied to rooms.",
		},
	)
)

func init() {
	prometheus.MustRegister(liveRooms, roomsCreated, editsApplied)
}

func setLiveRooms(count int) {
	liveRooms.Set(float64(count))
}

func incRoomsCreated() {
	roomsCreated.Inc()
}

func incEditsApplied() {
	editsApplied.Inc()
}
