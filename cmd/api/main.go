package main

import (
	"context"
	"log"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"scentswap/internal/adapter/api"
	"scentswap/internal/adapter/api/handler"
	apimiddleware "scentswap/internal/adapter/api/middleware"
	"scentswap/internal/adapter/api/router"
	"scentswap/internal/adapter/repository"
	"scentswap/internal/infrastructure/firebase"
	"scentswap/internal/infrastructure/websocket"
	"scentswap/internal/usecase"
	"scentswap/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opts []option.ClientOption

	// Service account from environment variable (production) or file path
	// (local development); on GCP the default credentials are enough.
	if serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); serviceAccountJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		opts = append(opts, option.WithCredentialsJSON([]byte(serviceAccountJSON)))
	} else if serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"); serviceAccountPath != "" {
		log.Printf("Using Firebase service account from file: %s", serviceAccountPath)
		opts = append(opts, option.WithCredentialsFile(serviceAccountPath))
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	messagingClient, err := firebaseApp.Messaging(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Messaging: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	swapRepo := repository.NewFirestoreSwapRepository(firestoreClient)
	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	listingRepo := repository.NewFirestoreListingRepository(firestoreClient)

	fbAuthClient := firebase.NewFirebaseAuthClient(authClient)
	notifier := firebase.NewFCMNotifier(messagingClient)

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	counters := usecase.NewCounterUseCase(swapRepo, userRepo, time.Duration(cfg.PresenceWindowSeconds)*time.Second)
	swapUseCase := usecase.NewSwapUseCase(swapRepo, userRepo, listingRepo, counters, notifier, wsManager)
	conversationUseCase := usecase.NewConversationUseCase(swapRepo, userRepo, counters, wsManager)
	listingUseCase := usecase.NewListingUseCase(listingRepo, userRepo)
	userUseCase := usecase.NewUserUseCase(userRepo)
	reconcileUseCase := usecase.NewReconcileUseCase(
		swapRepo,
		userRepo,
		listingRepo,
		cfg.JobPageSize,
		time.Duration(cfg.SwapRetentionDays)*24*time.Hour,
		time.Duration(cfg.CleanupChildDelayMs)*time.Millisecond,
		cfg.CleanupChildBatchSize,
	)

	handler.Setup(swapUseCase, conversationUseCase, listingUseCase, userUseCase, reconcileUseCase)
	handler.SetupHealthHandler()
	handler.SetupWebSocketHandler(wsManager, fbAuthClient)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient)
	jobMiddleware := apimiddleware.NewJobMiddleware(cfg.JobToken)

	router.Setup(e, authMiddleware, jobMiddleware)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
