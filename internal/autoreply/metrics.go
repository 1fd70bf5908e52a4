package autoreply

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "replyflow_runs_total",
		Help: "Completed auto-reply runs, including disabled no-ops.",
	})
	repliesSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "replyflow_replies_sent_total",
		Help: "Replies successfully sent across all runs.",
	})
	candidatesSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "replyflow_candidates_skipped_total",
		Help: "Candidates skipped, by reason.",
	}, []string{"reason"})
	sendFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "replyflow_send_failures_total",
		Help: "Reply sends that failed.",
	})
	notificationsSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "replyflow_notifications_sent_total",
		Help: "Slack run summaries delivered.",
	})
)
