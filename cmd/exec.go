package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"eventvote/config"
	"eventvote/handlers"
	"eventvote/monitoring"
	"eventvote/security"
	"eventvote/services"
	"eventvote/services/provider"
	"eventvote/services/provider/paystack"
	"eventvote/utils"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go"
	"github.com/redis/go-redis/v9"

	_ "eventvote/migrations"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL)
	defer redisClient.Close()

	// Initialize PubNub (vote count push)
	pnConfig := pubnub.NewConfig()
	pnConfig.PublishKey = cfg.PubNubPublishKey
	pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
	pnConfig.SecretKey = cfg.PubNubSecretKey

	pn := pubnub.NewPubNub(pnConfig)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	paymentProvider, err := newPaymentProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer paymentProvider.Close(ctx)

	// Initialize services
	store := services.NewDBStore(app)
	monitor := monitoring.NewMonitor(app, redisClient, cfg.MetricsInterval)
	publisher := services.NewPubNubPublisher(pn)

	voteService := services.NewVoteService(store, paymentProvider, publisher, monitor, cfg.Currency)
	inventoryService := services.NewInventoryService(store, monitor)
	checkInService := services.NewCheckInService(store, monitor)
	paymentService := services.NewPaymentService(store, redisClient, paymentProvider, publisher, monitor, cfg.WebhookGuardTTL, cfg.Currency)

	// The simulated provider delivers settlements over its PubNub channel
	// instead of an HTTP webhook.
	if sim, ok := paymentProvider.(*provider.Simulated); ok {
		go func() {
			for {
				select {
				case tran := <-sim.Transactions():
					slog.Info("Simulated settlement received", "ref", tran.Ref, "reference", tran.Reference)
					if err := paymentService.HandleSettlement(ctx, tran); err != nil {
						slog.Error("Failed to process simulated settlement", "error", err, "ref", tran.Ref)
					}
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	// Initialize handlers
	eventHandler := handlers.NewEventHandler(app)
	voteHandler := handlers.NewVoteHandler(voteService)
	ticketHandler := handlers.NewTicketHandler(app, inventoryService, paymentService)
	checkInHandler := handlers.NewCheckInHandler(checkInService)
	webhookHandler := handlers.NewWebhookHandler(paymentService, paymentProvider)
	adminHandler := handlers.NewAdminHandler(app)

	limiter := security.NewRateLimiter(redisClient)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	// Start background tasks
	if cfg.EnableMetrics {
		go monitor.Start(ctx)
	}

	// Setup graceful shutdown
	go handleShutdown(cancel)

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		syncActiveEventsToRedis(app, redisClient)

		// Event management endpoints
		e.Router.GET("/api/v1/events", eventHandler.ListEvents)
		e.Router.POST("/api/v1/events", eventHandler.CreateEvent)
		e.Router.GET("/api/v1/events/{eventId}", eventHandler.GetEvent)
		e.Router.PATCH("/api/v1/events/{eventId}", eventHandler.UpdateEvent)
		e.Router.DELETE("/api/v1/events/{eventId}", eventHandler.DeleteEvent)
		e.Router.POST("/api/v1/events/{eventId}/gate-code", eventHandler.SetGateCode)
		e.Router.GET("/api/v1/events/{eventId}/revenue", eventHandler.GetRevenue)

		// Category and nominee endpoints
		e.Router.POST("/api/v1/events/{eventId}/categories", eventHandler.CreateCategory)
		e.Router.DELETE("/api/v1/categories/{categoryId}", eventHandler.DeleteCategory)
		e.Router.POST("/api/v1/categories/{categoryId}/nominees", eventHandler.CreateNominee)
		e.Router.DELETE("/api/v1/nominees/{nomineeId}", eventHandler.DeleteNominee)

		// Ticket type endpoints
		e.Router.POST("/api/v1/events/{eventId}/ticket-types", eventHandler.CreateTicketType)
		e.Router.PATCH("/api/v1/ticket-types/{ticketTypeId}", eventHandler.UpdateTicketType)

		// Voting endpoints
		e.Router.POST("/api/v1/events/{eventId}/votes", voteHandler.CastVote).
			BindFunc(limiter.Limit("vote", cfg.VoteRateLimit, cfg.VoteRateWindow))
		e.Router.GET("/api/v1/events/{eventId}/results", voteHandler.GetResults)

		// Ticket endpoints
		e.Router.POST("/api/v1/tickets/purchase", ticketHandler.Purchase)
		e.Router.POST("/api/v1/orders/{orderId}/pay", ticketHandler.PayOrder)
		e.Router.GET("/api/v1/tickets/mine", ticketHandler.MyTickets)

		// Check-in endpoint
		e.Router.POST("/api/v1/checkin", checkInHandler.CheckIn).
			BindFunc(limiter.Limit("checkin", cfg.CheckInRateLimit, cfg.CheckInRateWindow))

		// Payment webhook
		e.Router.POST("/webhooks/payment", webhookHandler.HandlePaymentWebhook)

		// Admin endpoints
		admin := e.Router.Group("/api/v1/admin")
		admin.BindFunc(adminHandler.RequireAdmin)
		admin.GET("/stats", adminHandler.GetStats)
		admin.GET("/events", adminHandler.ListEvents)
		admin.POST("/events/{eventId}/toggle-active", adminHandler.ToggleEventActive)
		admin.GET("/users", adminHandler.ListUsers)
		admin.POST("/users/{userId}/role", adminHandler.SetUserRole)

		// Test endpoint for payment simulation
		if cfg.Environment == "development" {
			e.Router.POST("/api/v1/test/simulate-payment", webhookHandler.SimulatePayment)
		}

		// Prometheus metrics
		if cfg.EnableMetrics {
			e.Router.GET("/metrics", apis.WrapStdHandler(promhttp.Handler()))
		}

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		setupEventHooks(app, redisClient)

		return e.Next()
	})

	// Start server
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
	return nil
}

func newPaymentProvider(ctx context.Context, cfg *config.Config) (provider.Provider, error) {
	switch cfg.PaymentProvider {
	case string(provider.KindPaystack):
		return paystack.New(ctx, &paystack.Config{
			BaseURL:       cfg.PaystackBaseURL,
			SecretKey:     cfg.PaystackSecretKey,
			WebhookSecret: cfg.PaystackWebhookSecret,
		})
	case string(provider.KindSimulated):
		return provider.NewSimulated(ctx, &provider.SimulatedConfig{
			SubscribeKey: cfg.SimulatorSubscribeKey,
			Channel:      cfg.SimulatorChannel,
		}), nil
	default:
		return nil, fmt.Errorf("unknown payment provider %q", cfg.PaymentProvider)
	}
}

// syncActiveEventsToRedis seeds the active_events set the metrics
// collector reads.
func syncActiveEventsToRedis(app *pocketbase.PocketBase, redisClient *redis.Client) {
	ctx := context.Background()

	var records []dbx.NullStringMap
	if err := app.DB().NewQuery(
		"SELECT id FROM events WHERE active = 1",
	).All(&records); err != nil {
		log.Printf("Error fetching active events: %v", err)
		return
	}

	redisClient.Del(ctx, "active_events")

	if len(records) > 0 {
		var eventIDs []interface{}
		for _, record := range records {
			if id := record["id"].String; id != "" {
				eventIDs = append(eventIDs, id)
			}
		}

		if len(eventIDs) > 0 {
			redisClient.SAdd(ctx, "active_events", eventIDs...)
			log.Printf("Synced %d active events to Redis", len(eventIDs))
		}
	}
}

// setupEventHooks keeps the Redis active_events set in step with the
// events collection, regardless of whether changes come through the API
// or the admin UI.
func setupEventHooks(app *pocketbase.PocketBase, redisClient *redis.Client) {
	ctx := context.Background()

	app.OnRecordAfterCreateSuccess("events").BindFunc(func(e *core.RecordEvent) error {
		if e.Record.GetBool("active") {
			if err := redisClient.SAdd(ctx, "active_events", e.Record.Id).Err(); err != nil {
				slog.Error("Failed to add active event to Redis", "eventID", e.Record.Id, "error", err)
			}
		}
		return e.Next()
	})

	app.OnRecordAfterUpdateSuccess("events").BindFunc(func(e *core.RecordEvent) error {
		if e.Record.GetBool("active") {
			if err := redisClient.SAdd(ctx, "active_events", e.Record.Id).Err(); err != nil {
				slog.Error("Failed to add active event to Redis", "eventID", e.Record.Id, "error", err)
			}
		} else {
			if err := redisClient.SRem(ctx, "active_events", e.Record.Id).Err(); err != nil {
				slog.Error("Failed to remove inactive event from Redis", "eventID", e.Record.Id, "error", err)
			}
		}
		return e.Next()
	})

	app.OnRecordAfterDeleteSuccess("events").BindFunc(func(e *core.RecordEvent) error {
		if err := redisClient.SRem(ctx, "active_events", e.Record.Id).Err(); err != nil {
			slog.Error("Failed to remove deleted event from Redis", "eventID", e.Record.Id, "error", err)
		}
		return e.Next()
	})
}

// handleShutdown handles graceful shutdown
func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	cancel()
}
