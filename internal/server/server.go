// Package server contains HTTP handlers and route wiring for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"quill/internal/cache"
	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/external"
	"quill/internal/mailer"
	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/observability"
	"quill/internal/repository"
	"quill/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// sessionCookie carries the session token for browser clients; API clients
// may use a bearer header instead.
const sessionCookie = "quill_session"

// Server holds all dependencies and provides handlers
type Server struct {
	config      *config.Config
	db          *gorm.DB
	redis       *redis.Client
	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	authSvc     *service.AuthService
	postSvc     *service.PostService
	commentSvc  *service.CommentService
	resolver    *external.Resolver
	mailer      *mailer.Mailer
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()
	sessions := cache.NewSessions(redisClient)

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	httpClient := external.NewHTTPClient()
	resolver := external.NewResolver(
		external.NewNewsClient(cfg.NewsBaseURL, cfg.NewsAPIKey, cfg.NewsCountry, cfg.NewsPageSize, httpClient),
		external.NewIPLocator(cfg.IPGeoBaseURL, httpClient),
		external.NewGeocoder(cfg.GeocodeBaseURL, httpClient),
		external.NewForecastClient(cfg.ForecastBaseURL, httpClient),
	)

	return &Server{
		config:      cfg,
		db:          db,
		redis:       redisClient,
		userRepo:    userRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
		authSvc:     service.NewAuthService(userRepo, sessions, cfg.JWTSecret, cfg.ScryptSaltLen),
		postSvc:     service.NewPostService(postRepo),
		commentSvc:  service.NewCommentService(commentRepo, postRepo),
		resolver:    resolver,
		mailer:      mailer.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.ContactRecipient),
	}, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(requestid.New())
	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())
	app.Use(middleware.Tracing())

	prometheus := fiberprometheus.New("quill")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	app.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Landing page context: posts plus best-effort news and weather.
	api.Get("/", s.GetLanding)
	api.Get("/health", s.HealthCheck)
	api.Get("/about", s.GetAbout)

	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(s.redis, 3, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.AuthRequired(), s.Logout)

	// Public post reads
	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Get("/:id/comments", s.GetComments)
	posts.Get("/:id", s.GetPost)

	// Comment creation is soft-gated: an anonymous visitor is redirected to
	// the login flow instead of hard-denied.
	posts.Post("/:id/comments", s.OptionalAuth(),
		middleware.RateLimit(s.redis, 5, time.Minute, "create_comment"), s.AddComment)

	// Post mutations require a resolved session; author-or-superuser checks
	// happen in the service layer.
	posts.Post("/", s.AuthRequired(), middleware.RateLimit(s.redis, 2, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Put("/:id", s.AuthRequired(), s.UpdatePost)
	posts.Delete("/:id", s.AuthRequired(), s.DeletePost)

	users := api.Group("/users")
	users.Get("/", s.GetUsers)
	users.Get("/:id/posts", s.GetUserPosts)

	api.Post("/contact", middleware.RateLimit(s.redis, 3, 10*time.Minute, "contact"), s.SendContactMessage)
}

// HealthCheck handles health check requests
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"status": "ok",
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// GetAbout handles GET /api/about
func (s *Server) GetAbout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"name":        "Quill",
		"description": "A small blogging platform with weather and headlines on the side.",
	})
}

// sessionClaims is what the middleware extracts from a valid token.
type sessionClaims struct {
	userID    uint
	jti       string
	expiresAt time.Time
}

// tokenFromRequest extracts the session token from the Authorization header
// or, failing that, the session cookie.
func tokenFromRequest(c *fiber.Ctx) string {
	if authHeader := c.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}
	return c.Cookies(sessionCookie)
}

// parseSession validates the token's signature, method, issuer, audience,
// and revocation state, and returns the bound claims.
func (s *Server) parseSession(c *fiber.Ctx, tokenString string) (*sessionClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewUnauthorizedError("Invalid token claims")
	}

	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != service.TokenIssuer {
		return nil, models.NewUnauthorizedError("Invalid token issuer")
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != service.TokenAudience {
		return nil, models.NewUnauthorizedError("Invalid token audience")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, models.NewUnauthorizedError("Invalid subject claim")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return nil, models.NewUnauthorizedError("Invalid user ID in token")
	}

	sc := &sessionClaims{userID: uint(userID)}
	if jti, ok := claims["jti"].(string); ok {
		sc.jti = jti
	}
	if exp, ok := claims["exp"].(float64); ok {
		sc.expiresAt = time.Unix(int64(exp), 0)
	}

	sessions := cache.NewSessions(s.redis)
	if sessions.IsRevoked(c.Context(), sc.jti) {
		return nil, models.NewUnauthorizedError("Session has been logged out")
	}

	return sc, nil
}

// AuthRequired enforces authentication and acts as the user loader: the
// session identity is resolved back to a live User row on every request,
// and the request fails if it no longer resolves.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			return models.RespondWithError(c, models.NewUnauthorizedError("Authorization required"))
		}

		sc, err := s.parseSession(c, tokenString)
		if err != nil {
			return models.RespondWithError(c, err)
		}

		user, err := s.userRepo.GetByID(c.Context(), sc.userID)
		if err != nil {
			return models.RespondWithError(c, models.NewUnauthorizedError("Session user no longer exists"))
		}

		c.Locals("userID", sc.userID)
		c.Locals("currentUser", user)
		c.Locals("sessionJTI", sc.jti)
		c.Locals("sessionExp", sc.expiresAt)

		return c.Next()
	}
}

// OptionalAuth resolves the session identity when present but leaves the
// request anonymous otherwise. Soft-gated handlers decide what anonymity
// means for them.
func (s *Server) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			return c.Next()
		}

		sc, err := s.parseSession(c, tokenString)
		if err != nil {
			return c.Next()
		}

		if _, err := s.userRepo.GetByID(c.Context(), sc.userID); err != nil {
			return c.Next()
		}

		c.Locals("userID", sc.userID)
		return c.Next()
	}
}

// currentUserID returns the authenticated user's id, or zero for an
// anonymous request.
func currentUserID(c *fiber.Ctx) uint {
	if uid, ok := c.Locals("userID").(uint); ok {
		return uid
	}
	return 0
}

// Shutdown gracefully releases server resources.
func (s *Server) Shutdown(ctx context.Context) error {
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			observability.Logger.Error("error closing sql DB", "error", cerr.Error())
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			observability.Logger.Error("error closing redis", "error", rerr.Error())
		}
	}

	observability.Logger.Info("Server shutdown complete")
	return nil
}
