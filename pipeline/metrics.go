package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var messagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "modbot_pipeline_messages_total",
	Help: "Inbound messages processed, by outcome",
}, []string{"outcome"})

var commandsHandled = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "modbot_pipeline_commands_total",
	Help: "Chat commands dispatched to a registered handler",
}, []string{"command"})
