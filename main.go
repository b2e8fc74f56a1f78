package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"feed-service/internal/config"
	"feed-service/internal/db"
	"feed-service/internal/handlers"
	"feed-service/internal/middleware"
	"feed-service/internal/observability"
	"feed-service/internal/rabbitmq"
	"feed-service/internal/relay"
	"feed-service/internal/repositories"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	database, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	// The relay path must be up before serving: a silent live-update outage
	// is worse than refusing to start.
	publisher, err := rabbitmq.NewPublisher(cfg.BrokerURL, cfg.BrokerQueue)
	if err != nil {
		log.Fatalf("failed to connect to broker: %v", err)
	}
	eventRelay := relay.New(publisher)

	roomRepo := repositories.NewRoomRepo(database)
	messageRepo := repositories.NewMessageRepo(database)

	roomHandler := handlers.NewRoomHandler(roomRepo)
	messageHandler := handlers.NewMessageHandler(roomRepo, messageRepo, eventRelay, cfg.PageLimit)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(observability.HTTPMetricsMiddleware())

	identity := middleware.Identity()

	router.POST("/rooms", identity, roomHandler.CreateRoom)
	router.GET("/rooms", identity, roomHandler.ListRooms)
	router.GET("/rooms/:room_id", identity, roomHandler.GetRoom)
	router.GET("/rooms/:room_id/messages", identity, messageHandler.ListMessages)
	router.POST("/rooms/:room_id/messages", identity, messageHandler.CreateMessage)
	router.PATCH("/rooms/:room_id/messages/:message_id", identity, messageHandler.UpdateMessage)
	router.DELETE("/rooms/:room_id/messages/:message_id", identity, messageHandler.DeleteMessage)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	log.Printf("feed-service listening on :%s push_service=%s", cfg.Port, cfg.PushServiceURL)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
