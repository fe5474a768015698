package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"brokercrm/internal/config"
	"brokercrm/internal/database"
	"brokercrm/internal/middleware"
	"brokercrm/internal/modules/audit"
	"brokercrm/internal/modules/auth"
	"brokercrm/internal/modules/chat"
	"brokercrm/internal/modules/client"
	"brokercrm/internal/modules/deal"
	"brokercrm/internal/modules/document"
	"brokercrm/internal/modules/history"
	"brokercrm/internal/modules/note"
	"brokercrm/internal/modules/similar"
	"brokercrm/internal/modules/task"
	jwtsvc "brokercrm/internal/pkg/jwt"
	"brokercrm/internal/repository"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	dealRepo := repository.NewDealRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	policyRepo := repository.NewPolicyRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	relatedRepo := repository.NewRelatedRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	auditService := audit.NewService(auditRepo)

	authService := auth.NewService(userRepo, j)
	authHandler := auth.NewHandler(authService)

	clientService := client.NewService(clientRepo, auditService)
	clientHandler := client.NewHandler(clientService)

	dealService := deal.NewService(dealRepo, quoteRepo, policyRepo, paymentRepo, auditService)
	dealHandler := deal.NewHandler(dealService)

	similarService := similar.NewService(dealRepo, clientRepo, quoteRepo)
	similarHandler := similar.NewHandler(similarService)

	historyService := history.NewService(dealRepo, relatedRepo, auditService)
	historyHandler := history.NewHandler(historyService)

	taskService := task.NewService(taskRepo, auditService)
	taskHandler := task.NewHandler(taskService)

	noteService := note.NewService(noteRepo, auditService)
	noteHandler := note.NewHandler(noteService)

	storage := document.NewDiskStorage(cfg.StorageDir)
	documentService := document.NewService(documentRepo, storage, auditService)
	documentHandler := document.NewHandler(documentService)

	hub := chat.NewHub()
	defer hub.Close()
	chatService := chat.NewService(messageRepo, hub)
	chatHandler := chat.NewHandler(chatService, hub)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.RequestLogger())

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterRoutes(v1)

		// protected
		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			clientHandler.RegisterRoutes(protected)
			dealHandler.RegisterRoutes(protected)
			similarHandler.RegisterRoutes(protected)
			historyHandler.RegisterRoutes(protected)
			taskHandler.RegisterRoutes(protected)
			noteHandler.RegisterRoutes(protected)
			documentHandler.RegisterRoutes(protected)
			chatHandler.RegisterRoutes(protected)
		}
	}

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
