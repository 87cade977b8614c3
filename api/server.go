package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/paystream/paystream/internal/accounts"
	"github.com/paystream/paystream/internal/auth"
	"github.com/paystream/paystream/internal/config"
	"github.com/paystream/paystream/internal/feed"
	"github.com/paystream/paystream/internal/transfers"
)

var validate = validator.New()

// Server is the dashboard HTTP API: REST endpoints plus the live transfer
// feed websocket.
type Server struct {
	router    *gin.Engine
	logger    *zap.Logger
	auth      *auth.Service
	transfers *transfers.Store
	accounts  *accounts.Store
	gateway   *feed.Gateway
}

// NewServer wires the gin router with logging, recovery, tracing, and CORS
// middleware, and registers all routes.
func NewServer(
	logger *zap.Logger,
	cfg *config.Config,
	authSvc *auth.Service,
	transferStore *transfers.Store,
	accountStore *accounts.Store,
	gateway *feed.Gateway,
) *Server {
	server := &Server{
		logger:    logger,
		auth:      authSvc,
		transfers: transferStore,
		accounts:  accountStore,
		gateway:   gateway,
	}

	router := gin.New()
	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger, true))
	router.Use(otelgin.Middleware("paystream-api"))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.HTTP.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	server.router = router
	server.registerRoutes()
	return server
}

// Router returns the gin engine, used by tests and the http.Server in main.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) registerRoutes() {
	public := s.router.Group("/api/v1")
	{
		public.GET("/health", s.healthCheck)
		public.GET("/metrics", gin.WrapH(promhttp.Handler()))
		public.POST("/auth/login", s.login)
	}

	protected := s.router.Group("/api/v1")
	protected.Use(s.authMiddleware())
	{
		protected.GET("/accounts", s.listAccounts)
		protected.POST("/accounts", s.createAccount)
		protected.GET("/transfers", s.listTransfers)
		protected.POST("/transfers", s.createTransfer)
		protected.GET("/transfers/feed", s.gateway.Handle)
		protected.GET("/transfers/:id", s.getTransfer)
		protected.PATCH("/transfers/:id/status", s.updateTransferStatus)
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// authMiddleware rejects requests without a valid bearer token and places
// the authenticated user id in the gin context.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}
		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			c.Abort()
			return
		}
		claims, err := s.auth.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}
		c.Set("userID", claims.Subject)
		c.Next()
	}
}
