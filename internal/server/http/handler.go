package http

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"pong/internal/server/core"
	"pong/internal/server/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const rateLimitRate = 10 // req/sec

// HTTPHandler handles HTTP requests and routes them to the service
type HTTPHandler struct {
	svc *service.Service
}

func NewHTTPHandler(svc *service.Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

func NewFiberApp(svc *service.Service, devMode bool) *fiber.App {
	// Create handler
	h := NewHTTPHandler(svc)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Health check (no rate limit)
	app.Get("/health", h.Health)

	// API v1 routes
	api := app.Group("/api/v1")

	// Admin login: 10 req/min per IP
	api.Post("/auth/login", limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.CodeRateLimit,
				Details: "10 login attempts per minute allowed",
			})
		},
	}), h.LoginHandler)

	// Remaining routes with standard rate limiting
	maxReq := rateLimitRate
	if devMode {
		maxReq = rateLimitRate * 2
	}
	api.Use(limiter.New(limiter.Config{
		Max:        maxReq,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			if xff := c.Get("X-Forwarded-For"); xff != "" {
				if idx := strings.Index(xff, ","); idx != -1 {
					return strings.TrimSpace(xff[:idx])
				}
				return xff
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.CodeRateLimit,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	}))

	// Content-Type validation for POST requests
	api.Use(contentTypeValidator)

	// Middleware validation for sanitization
	api.Use(validationMiddleware)

	// Create token validator closure
	validateToken := svc.ValidateToken

	// Read routes are open; destructive routes and bulk import require
	// an admin token
	api.Get("/players", h.ListPlayers)
	api.Post("/players", h.CreatePlayer)
	api.Get("/players/:playerId", h.GetPlayer)
	api.Delete("/players/:playerId", AuthRequired(validateToken), h.RemovePlayer)
	api.Get("/matches", h.ListMatches)
	api.Post("/matches", h.RecordMatch)
	api.Get("/matches/:matchId", h.GetMatch)
	api.Delete("/matches/:matchId", AuthRequired(validateToken), h.DeleteMatch)
	api.Get("/leaderboard", h.Leaderboard)
	api.Post("/admin/import", AuthRequired(validateToken), h.ImportHandler)

	return app
}

// contentTypeValidator ensures POST requests have application/json
func contentTypeValidator(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost {
		contentType := c.Get("Content-Type")
		if contentType != "application/json" && contentType != "" {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(core.ErrorResponse{
				Error:   "unsupported media type",
				Code:    core.CodeInvalidContent,
				Details: "Content-Type must be application/json",
			})
		}
	}
	return c.Next()
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := core.ErrorResponse{
		Error: "internal server error",
		Code:  core.CodeInternalError,
	}

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		response.Error = e.Message

		// Map HTTP status to error codes
		switch code {
		case fiber.StatusNotFound:
			response.Code = core.CodePlayerNotFound
		case fiber.StatusBadRequest:
			response.Code = core.CodeInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.CodeRateLimit
		}
	}

	return c.Status(code).JSON(response)
}

// serviceError maps a service error to its HTTP status and wire shape
func serviceError(c *fiber.Ctx, err error) error {
	status := fiber.StatusBadRequest
	switch {
	case errors.Is(err, core.ErrPlayerNotFound), errors.Is(err, core.ErrMatchNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, core.ErrDuplicateName), errors.Is(err, core.ErrPlayerHasHistory):
		status = fiber.StatusConflict
	case errors.Is(err, core.ErrConsistency):
		status = fiber.StatusInternalServerError
	case errors.Is(err, core.ErrInvalidName), errors.Is(err, core.ErrInvalidScore),
		errors.Is(err, core.ErrSamePlayer), errors.Is(err, core.ErrUnknownPlayer):
		status = fiber.StatusBadRequest
	default:
		status = fiber.StatusInternalServerError
	}

	return c.Status(status).JSON(core.ErrorResponse{
		Error: err.Error(),
		Code:  core.ErrorCode(err),
	})
}

// validatedBody retrieves the parsed request left by validationMiddleware
func validatedBody[T any](c *fiber.Ctx) (*T, error) {
	validated, ok := c.Locals("validated").(bool)
	if !ok || !validated {
		return nil, c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "validation bypass detected",
			Code:  core.CodeInternalError,
		})
	}

	body, ok := c.Locals("validatedBody").(*T)
	if !ok || body == nil {
		return nil, c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "validation data missing",
			Code:  core.CodeInternalError,
		})
	}
	return body, nil
}

// Health check endpoint with storage status
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"time":    time.Now().Unix(),
		"storage": h.svc.GetStorageHealth(),
	})
}

// ListPlayers returns all players sorted by rating
func (h *HTTPHandler) ListPlayers(c *fiber.Ctx) error {
	return c.JSON(h.svc.ListPlayers())
}

// CreatePlayer registers a new player at the baseline rating
func (h *HTTPHandler) CreatePlayer(c *fiber.Ctx) error {
	req, err := validatedBody[core.CreatePlayerRequest](c)
	if err != nil || req == nil {
		return err
	}

	player, err := h.svc.CreatePlayer(req.Name)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(player)
}

// GetPlayer retrieves a single player by ID
func (h *HTTPHandler) GetPlayer(c *fiber.Ctx) error {
	playerID := c.Params("playerId")

	// Validate UUID format
	if !isValidUUID(playerID) {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid player ID format",
			Code:    core.CodeInvalidRequest,
			Details: "player ID must be a valid UUID",
		})
	}

	player, err := h.svc.GetPlayer(playerID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(player)
}

// RemovePlayer deletes a player. Players with recorded matches are
// rejected unless ?cascade=true is given, which also drops their
// matches and recomputes all ratings.
func (h *HTTPHandler) RemovePlayer(c *fiber.Ctx) error {
	playerID := c.Params("playerId")

	// Validate UUID format
	if !isValidUUID(playerID) {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid player ID format",
			Code:    core.CodeInvalidRequest,
			Details: "player ID must be a valid UUID",
		})
	}

	cascade := c.Query("cascade", "false") == "true"

	if err := h.svc.RemovePlayer(playerID, cascade); err != nil {
		return serviceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ListMatches returns the ledger, newest first
func (h *HTTPHandler) ListMatches(c *fiber.Ctx) error {
	return c.JSON(h.svc.ListMatches())
}

// RecordMatch appends a match result to the ledger and updates ratings
func (h *HTTPHandler) RecordMatch(c *fiber.Ctx) error {
	req, err := validatedBody[core.RecordMatchRequest](c)
	if err != nil || req == nil {
		return err
	}

	match, err := h.svc.RecordMatch(req.WinnerID, req.LoserID, req.WinnerScore, req.LoserScore, req.PlayedAt)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(match)
}

// GetMatch retrieves a single match by ID
func (h *HTTPHandler) GetMatch(c *fiber.Ctx) error {
	matchID := c.Params("matchId")

	// Validate UUID format
	if !isValidUUID(matchID) {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid match ID format",
			Code:    core.CodeInvalidRequest,
			Details: "match ID must be a valid UUID",
		})
	}

	match, err := h.svc.GetMatch(matchID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(match)
}

// DeleteMatch retracts a match and replays the remaining history
func (h *HTTPHandler) DeleteMatch(c *fiber.Ctx) error {
	matchID := c.Params("matchId")

	// Validate UUID format
	if !isValidUUID(matchID) {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid match ID format",
			Code:    core.CodeInvalidRequest,
			Details: "match ID must be a valid UUID",
		})
	}

	if err := h.svc.DeleteMatch(matchID); err != nil {
		return serviceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Leaderboard returns the ranked standings
func (h *HTTPHandler) Leaderboard(c *fiber.Ctx) error {
	return c.JSON(h.svc.Leaderboard())
}

// ImportHandler replaces the current dataset with an imported one and
// derives all ratings by replay
func (h *HTTPHandler) ImportHandler(c *fiber.Ctx) error {
	req, err := validatedBody[core.ImportRequest](c)
	if err != nil || req == nil {
		return err
	}

	resp, err := h.svc.Import(*req)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(resp)
}
