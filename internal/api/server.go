package api

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"courtbook/internal/config"
	"courtbook/internal/consumers"
	"courtbook/internal/directory"
	"courtbook/internal/handlers"
	"courtbook/internal/messaging"
	"courtbook/internal/middleware"
	"courtbook/internal/tokenstore"
	"courtbook/internal/upstream"
)

// Server представляет HTTP сервер шлюза
type Server struct {
	router   *gin.Engine
	config   *config.Config
	nats     *messaging.NATSClient
	dir      *directory.Directory
	tokens   tokenstore.Store
	valkey   *tokenstore.Valkey
	listener *consumers.Listener
}

// NewServer создает новый экземпляр сервера
func NewServer(cfg *config.Config) *Server {
	gin.SetMode(cfg.GinMode)

	// Токен живет в Valkey, если он настроен, иначе в памяти процесса
	var tokens tokenstore.Store
	var valkey *tokenstore.Valkey
	if cfg.Valkey.Addr != "" {
		v, err := tokenstore.NewValkey(cfg.Valkey)
		if err != nil {
			log.Fatalf("Failed to connect to Valkey: %v", err)
		}
		valkey = v
		tokens = v
	} else {
		tokens = tokenstore.NewMemory()
	}

	// Клиент бэкенда и кеш справочника сессий
	backend := upstream.NewClient(cfg.Backend, tokens)
	dir := directory.New(backend, cfg.Directory)

	// Подключаемся к NATS
	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}

	// Слушатель событий бронирований инвалидирует кеш этого инстанса
	listener := consumers.NewListener(natsClient, dir)
	if err := listener.Start(); err != nil {
		log.Fatalf("Failed to start event listener: %v", err)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(cfg.RequestTimeout))
	router.Use(middleware.Metrics())

	server := &Server{
		router:   router,
		config:   cfg,
		nats:     natsClient,
		dir:      dir,
		tokens:   tokens,
		valkey:   valkey,
		listener: listener,
	}

	server.setupRoutes(handlers.NewHandlers(backend, dir, tokens, natsClient))

	return server
}

// setupRoutes настраивает все API роуты
func (s *Server) setupRoutes(h *handlers.Handlers) {
	// Auth endpoints: открыты, токен появляется только после логина
	auth := s.router.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/register", h.Register)
		auth.POST("/logout", h.Logout)
	}

	// API routes: требуют наличия сохраненного токена
	api := s.router.Group("/api")
	api.Use(middleware.RequireToken(s.tokens))
	{
		sessions := api.Group("/sessions")
		{
			sessions.GET("", h.ListSessions)
			sessions.GET("/:id", h.GetSession)
		}

		bookings := api.Group("/bookings")
		{
			bookings.POST("", h.CreateBooking)
			bookings.GET("", h.ListMyBookings)
			bookings.GET("/:id", h.GetBooking)
			bookings.DELETE("/:id", h.CancelBooking)
		}

		payments := api.Group("/payments")
		{
			payments.POST("", h.CreatePayment)
		}
	}

	// Health check and metrics endpoints
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// healthCheck обрабатывает health check запросы
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "courtbook-api",
		"version": "1.0.0",
	})
}

// Run запускает HTTP сервер
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter возвращает роутер для тестирования
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup закрывает соединения
func (s *Server) Cleanup() error {
	if s.listener != nil {
		s.listener.Stop()
	}

	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			log.Printf("Error closing NATS connection: %v", err)
		}
	}

	if s.dir != nil {
		s.dir.Close()
	}

	if s.valkey != nil {
		s.valkey.Close()
	}

	return nil
}
