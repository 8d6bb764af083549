package main

import (
	"context"
	"log"
	"net/http"
	"time"

	mgo "github.com/Piyash1/AstroChat-Mobile/data/mongo"
	"github.com/Piyash1/AstroChat-Mobile/global"
	"github.com/Piyash1/AstroChat-Mobile/logger"
	chatmodule "github.com/Piyash1/AstroChat-Mobile/module/chat"
	"github.com/Piyash1/AstroChat-Mobile/module/user"
	"github.com/Piyash1/AstroChat-Mobile/service/auth"
	"github.com/Piyash1/AstroChat-Mobile/service/chat"
	"github.com/Piyash1/AstroChat-Mobile/service/natsx"
	"github.com/Piyash1/AstroChat-Mobile/service/storage"
	rediscli "github.com/Piyash1/AstroChat-Mobile/service/storage/redis"
	"github.com/Piyash1/AstroChat-Mobile/tools/ids"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func main() {
	cfg, err := global.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger.Configure(cfg.LogLevel)
	defer logger.Sync()

	ids.SetNodeID(cfg.SnowflakeNode)

	gatewayID := cfg.GatewayID
	if gatewayID == "" {
		gatewayID = "msg_gw-" + uuid.NewString()[:8]
	}

	// mongo is the source of truth; refusing to start without it
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	mongoClient, err := mgo.NewClient(ctx, &mgo.Config{
		Uri:      cfg.MongoURI,
		Database: cfg.MongoDatabase,
		Username: cfg.MongoUsername,
		Password: cfg.MongoPassword,
	})
	cancel()
	if err != nil {
		log.Fatalf("mongo: %v", err)
	}

	// optional presence mirror
	var mirror *storage.PresenceMirror
	if cfg.RedisAddr != "" {
		if err := rediscli.Init(rediscli.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}); err != nil {
			log.Fatalf("redis: %v", err)
		}
		mirror = storage.NewPresenceMirror(rediscli.Get(), gatewayID, cfg.PresenceTTL)
	}

	// optional message event publisher
	var publisher chat.EventPublisher
	if cfg.NatsURL != "" {
		producer, err := natsx.NewProducer(natsx.Config{
			Servers: []string{cfg.NatsURL},
			Name:    gatewayID,
		})
		if err != nil {
			log.Fatalf("nats: %v", err)
		}
		defer func() { _ = producer.Close() }()
		publisher = producer
	}

	verifier := auth.NewVerifier(auth.DefaultOptions([]byte(cfg.JWTSecret)))
	directory := user.NewDirectory(mongoClient)
	store := chatmodule.NewStore(mongoClient)

	g := chat.NewServer(chat.ServerConf{
		GatewayID:     gatewayID,
		SendQueueSize: cfg.SendQueueSize,
		WriteTimeout:  cfg.WriteTimeout,
	}, verifier, directory, store, mirror, publisher)

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Server is running"})
	})
	r.GET("/ws", g.HandleWS) // e.g. ws://localhost:3000/ws?token=...

	logger.Infof("[HTTP] gateway %s listening on %s", gatewayID, cfg.Addr)
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatalf("HTTP server failed: %v", err)
	}
}
