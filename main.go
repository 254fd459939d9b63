package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"vibin/chat"
	"vibin/config"
	"vibin/logger"
	"vibin/routes"
	"vibin/services"
	"vibin/socket"
	"vibin/utils"
)

func main() {
	v := config.New()
	if err := config.LoadConfig(v, "vibin"); err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to read config")
	}
	cfg, err := config.ParseConfig(v)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to parse config")
	}
	logger.Setup(cfg.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize DynamoDB client and services
	log.Info().Str("region", cfg.AWS.Region).Msg("🔌 Initializing AWS clients...")
	awsCfg, err := services.LoadAWSConfig(ctx, cfg.AWS)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to load AWS config")
	}
	dynamoService := &services.DynamoService{Client: services.InitializeDynamoDBClient(awsCfg, cfg.AWS)}

	userProfileService := services.NewUserProfileService(dynamoService, cfg.AWS.UsersTable)
	chatService := services.NewChatService(dynamoService, cfg.AWS.MessagesTable)
	matchService := services.NewMatchService(dynamoService, userProfileService, cfg.AWS.MatchesTable)
	interactionService := services.NewInteractionService(dynamoService, matchService, userProfileService, cfg.AWS.InteractionsTable)

	svcs := routes.Services{
		Chat:         chatService,
		Categorizer:  chat.NewCategorizer(chat.NewFetcher(chatService), cfg.Chat),
		Matches:      matchService,
		Interactions: interactionService,
		Profiles:     userProfileService,
	}
	if cfg.AWS.PhotoBucket != "" {
		s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.AWS.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.AWS.Endpoint)
				o.UsePathStyle = true
			}
		})
		svcs.Photos = services.NewPhotoService(s3Client, cfg.AWS.PhotoBucket)
	} else {
		log.Warn().Msg("⚠️ No photo bucket configured, photo upload URLs disabled")
	}

	r := routes.NewRouter(svcs)

	// Live channel: socket.io for the mobile app, plain WebSocket for the SDK.
	// Both take the user from the gateway's X-User-Id header.
	hub := socket.NewHub()
	socketServer := socket.NewSocketIOServer(hub)
	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Error().Err(err).Msg("❌ Socket.IO server stopped")
		}
	}()
	defer socketServer.Close()
	r.PathPrefix("/socket.io/").Handler(utils.RequireUser(socketServer))
	r.Handle("/ws", socket.ServeWS(hub, allowOrigin(cfg.Server.AllowedOrigins)))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-User-Id"},
		AllowCredentials: true,
	}).Handler(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           corsHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("port", cfg.Server.Port).Str("env", cfg.Server.Environment).Msg("🚀 Starting server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("❌ Server failed")
	}
}

func allowOrigin(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}
