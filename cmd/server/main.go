package main

import (
	"context"
	"log"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/shekharupadhyay/live-typing-board/internal/api"
	"github.com/shekharupadhyay/live-typing-board/internal/api/router"
	"github.com/shekharupadhyay/live-typing-board/internal/env"
	"github.com/shekharupadhyay/live-typing-board/internal/queue"
	"github.com/shekharupadhyay/live-typing-board/internal/service/room"
	"github.com/shekharupadhyay/live-typing-board/internal/websocket"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	queueManager := queue.NewRequestQueueManager(32, 8)

	hub := websocket.NewHub()
	go hub.Run()

	rooms := room.New(hub)
	handler := websocket.NewHandler(hub, rooms)

	if addr := env.Get(env.BoardRedisURL); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: env.Get(env.BoardRedisPass),
			DB:       0,
		})
		relay := websocket.NewRelay(client, uuid.NewString())
		rooms.SetRelay(relay)
		go relay.Run(context.Background(), rooms)
	}

	server := api.NewAPIServer(
		":"+env.GetOrDefault(env.Port, "4000"),
		queueManager,
		rooms,
		handler,
		router.UtilsRoutes("/api/v1"),
		router.BoardRoutes("/api/v1"),
	)

	server.Run()
}
