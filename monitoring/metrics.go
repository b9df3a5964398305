package monitoring

import (
	"context"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	votesCast = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "votes_cast_total",
			Help: "Total votes cast per event and payment status",
		},
		[]string{"event_id", "payment_status"},
	)

	ticketsSold = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_sold_total",
			Help: "Total tickets sold per event and ticket type",
		},
		[]string{"event_id", "ticket_type"},
	)

	inventoryRemaining = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ticket_inventory_remaining",
			Help: "Remaining ticket quantity per ticket type",
		},
		[]string{"event_id", "ticket_type"},
	)

	checkIns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_checkins_total",
			Help: "Total check-in attempts by outcome",
		},
		[]string{"status"},
	)

	webhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhooks_total",
			Help: "Total payment webhook deliveries by event type and outcome",
		},
		[]string{"event", "status"},
	)
)

type Monitor struct {
	app      core.App
	redis    *redis.Client
	interval time.Duration
}

func NewMonitor(app core.App, redisClient *redis.Client, interval time.Duration) *Monitor {
	return &Monitor{app: app, redis: redisClient, interval: interval}
}

// Start runs the periodic inventory gauge collector until ctx is cancelled.
func (m *Monitor) Start(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.collectInventoryMetrics(ctx)
		}
	}
}

func (m *Monitor) collectInventoryMetrics(ctx context.Context) {
	eventIDs, err := m.redis.SMembers(ctx, "active_events").Result()
	if err != nil || len(eventIDs) == 0 {
		return
	}

	for _, eventID := range eventIDs {
		rows := []struct {
			Name      string `db:"name"`
			Remaining int    `db:"remaining_quantity"`
		}{}

		err := m.app.DB().
			Select("name", "remaining_quantity").
			From("ticket_types").
			Where(dbx.HashExp{"event": eventID}).
			All(&rows)
		if err != nil {
			continue
		}

		for _, row := range rows {
			inventoryRemaining.WithLabelValues(eventID, row.Name).Set(float64(row.Remaining))
		}
	}
}

// TrackVote records a cast vote.
func (m *Monitor) TrackVote(eventID, paymentStatus string) {
	if m == nil {
		return
	}
	votesCast.WithLabelValues(eventID, paymentStatus).Inc()
}

// TrackTicketSale records sold tickets.
func (m *Monitor) TrackTicketSale(eventID, ticketType string, count int) {
	if m == nil {
		return
	}
	ticketsSold.WithLabelValues(eventID, ticketType).Add(float64(count))
}

// TrackCheckIn records a check-in attempt outcome.
func (m *Monitor) TrackCheckIn(status string) {
	if m == nil {
		return
	}
	checkIns.WithLabelValues(status).Inc()
}

// TrackWebhook records a webhook delivery outcome.
func (m *Monitor) TrackWebhook(event, status string) {
	if m == nil {
		return
	}
	webhookEvents.WithLabelValues(event, status).Inc()
}
