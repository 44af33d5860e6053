package main

import (
	"context"
	"log"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"live-service/internal/auth"
	"live-service/internal/bridge"
	"live-service/internal/config"
	"live-service/internal/db"
	"live-service/internal/handlers"
	"live-service/internal/livebus"
	"live-service/internal/models"
	"live-service/internal/observability"
	"live-service/internal/presence"
	"live-service/internal/repositories"
	"live-service/internal/sample"
	"live-service/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	messageRepo := repositories.NewMessageRepo(database)
	dmRepo := repositories.NewDirectMessageRepo(database)
	userRepo := repositories.NewUserRepo(database)
	contentRepo := repositories.NewContentRepo(database)

	resolver := auth.NewResolver(cfg.JWTSecret, userRepo)
	tracker := presence.NewTracker()
	protocol := ws.NewProtocol(messageRepo, dmRepo, userRepo)

	// Feed the online-users gauge from presence transitions.
	onlineIDs := make(map[string]struct{})
	var onlineMu sync.Mutex
	tracker.Subscribe(func(status models.PresenceStatus) {
		onlineMu.Lock()
		if status.Online {
			onlineIDs[status.UserID] = struct{}{}
		} else {
			delete(onlineIDs, status.UserID)
		}
		observability.SetOnlineUsers(len(onlineIDs))
		onlineMu.Unlock()
	})

	bus := livebus.New(uuid.NewString())
	if cfg.RedisAddr != "" {
		relay, err := livebus.NewRedisRelay(cfg.RedisAddr, cfg.RedisChannel)
		if err != nil {
			log.Printf("live bus: redis unavailable, running local-only: %v", err)
		} else {
			bus.AttachChannel(relay.Publish)
			go relay.Listen(context.Background(), bus)
			defer relay.Close()
		}
	}

	// Content mutations keep the sample pools consistent with eligibility.
	cache := sample.NewCache()
	bus.Subscribe(func(event models.LiveContentEvent) {
		switch event.Action {
		case models.ActionCreated, models.ActionUnbanned:
			cache.Add(event.Kind, event.ID)
		case models.ActionDeleted, models.ActionBanned:
			cache.Remove(event.Kind, event.ID)
		}
	})

	router := gin.Default()
	router.Use(observability.HTTPMetricsMiddleware())

	switch cfg.Mode {
	case config.ModeActor:
		rooms := ws.NewRoomManager()
		session := ws.NewRoomSessionHandler(rooms, protocol, tracker, resolver, cfg.AllowGuests)
		roomHandler := handlers.NewRoomHandler(rooms)
		router.GET("/ws/rooms/:room", session.HandleRoom)
		router.GET("/rooms/:room/online", roomHandler.OnlineCount)
	case config.ModeBridged:
		registry := ws.NewRegistry()
		transport := ws.NewBridgedTransport(registry)
		pub := bridge.NewAMQP(cfg.AMQPURL, cfg.AMQPExchange, transport.Receive)
		defer pub.Close()
		transport.SetPublisher(pub)
		session := ws.NewSessionHandler(transport, protocol, tracker, resolver, cfg.AllowGuests)
		router.GET("/ws/chat", session.Handle)
	default:
		transport := ws.NewLocalTransport(ws.NewRegistry())
		session := ws.NewSessionHandler(transport, protocol, tracker, resolver, cfg.AllowGuests)
		router.GET("/ws/chat", session.Handle)
	}

	chatHandler := handlers.NewChatHandler(messageRepo)
	presenceHandler := handlers.NewPresenceHandler(tracker, resolver, cfg.SSEHeartbeat)
	contentHandler := handlers.NewContentHandler(bus, cache, contentRepo, cfg.SSEHeartbeat)

	router.GET("/chat/messages", chatHandler.RecentMessages)
	router.GET("/presence/:user_id", presenceHandler.GetStatus)
	router.POST("/presence/query", presenceHandler.QueryStatuses)
	router.GET("/events/presence", presenceHandler.Stream)
	router.GET("/events/content", contentHandler.Stream)
	router.GET("/content/:kind/sample", contentHandler.Sample)
	router.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	log.Printf("live service starting mode=%s port=%s", cfg.Mode, cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
