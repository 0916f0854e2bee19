package chat

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var reconnectAttempts = promauto.NewCounter(prometheus.CounterOpts{
	Name: "chat_reconnect_attempts",
	Help: "Number of reconnect attempts made by the connection monitor",
})

var reconnectFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "chat_reconnect_failures",
	Help: "Number of reconnect attempts which failed",
})

var inboundEvents = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "chat_inbound_events",
	Help: "Number of inbound messages translated, by source",
}, []string{"source"})

var outboundChunks = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "chat_outbound_chunks",
	Help: "Number of outbound protocol sends, by kind",
}, []string{"kind"})

var outboundSuppressed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "chat_outbound_suppressed",
	Help: "Number of outbound sends dropped by suppression, by kind",
}, []string{"kind"})
