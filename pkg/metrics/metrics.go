package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Room engine gauges/counters, updated by the chat Manager.
var (
	RoomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dimelo_rooms_active",
		Help: "Number of rooms currently alive.",
	})
	MembersActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dimelo_room_members_active",
		Help: "Number of joined room members across all rooms.",
	})
	MessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dimelo_chat_messages_total",
		Help: "Chat messages broadcast, by kind.",
	}, []string{"kind"})
	RoomsClosedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dimelo_rooms_closed_total",
		Help: "Rooms torn down, by reason (empty or idle).",
	}, []string{"reason"})
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
