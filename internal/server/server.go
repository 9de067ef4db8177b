// Package server exposes the advisory backend over HTTP: the chat
// pipeline, farmer and crop records, the social feed, and the market and
// weather proxies.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/krishi-ai/krishi-go/internal/chat"
	"github.com/krishi-ai/krishi-go/internal/db"
	"github.com/krishi-ai/krishi-go/internal/metrics"
	"github.com/krishi-ai/krishi-go/internal/models"
)

// ChatService is the conversation pipeline surface the handlers call.
type ChatService interface {
	PostTextMessage(ctx context.Context, userID, text, language string) (chat.Result, error)
	PostVoiceMessage(ctx context.Context, userID string, audio []byte, language string) (chat.Result, error)
	PostDiagnosis(ctx context.Context, userID string, image []byte, imageMIME, language string) (chat.Result, error)
	History(ctx context.Context, userID string, limit int) ([]models.Turn, error)
	Clear(ctx context.Context, userID string) error
}

// FarmStore covers farmer, farm, crop, and location persistence.
type FarmStore interface {
	CreateFarmer(ctx context.Context, name, mobileNo, language string) (*models.Farmer, error)
	UpdateFarmer(ctx context.Context, farmerID string, upd db.FarmerUpdate) (*models.Farmer, error)
	GetFarmer(ctx context.Context, farmerID string) (*models.Farmer, error)
	CreateFarm(ctx context.Context, farmerID, name string, size float64, district, state string) (*models.Farm, error)
	GetFarms(ctx context.Context, farmerID string) ([]models.Farm, error)
	CreateCrop(ctx context.Context, farmID, name, variety, description string, plantedAt time.Time, previousCrop, previousYield string) (*models.Crop, error)
	GetCropsByFarmer(ctx context.Context, farmerID string) ([]models.Crop, error)
	GetLocation(ctx context.Context, district, state string) (*models.Location, error)
	CreateLocation(ctx context.Context, district, state, topic string) (*models.Location, error)
}

// SocialStore covers the community feed.
type SocialStore interface {
	CreatePost(ctx context.Context, userID, contentURL, contentDesc string) (*models.Post, error)
	DeletePost(ctx context.Context, postID, userID string) error
	Feed(ctx context.Context, limit, offset int) ([]models.Post, error)
	LikePost(ctx context.Context, postID string) error
	DislikePost(ctx context.Context, postID string) error
	CreateComment(ctx context.Context, postID, userID, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, commentID, userID string) error
	CommentsForPost(ctx context.Context, postID string, limit, offset int) ([]models.Comment, error)
}

// MarketService looks up mandi prices.
type MarketService interface {
	Prices(ctx context.Context, query models.MarketQuery) ([]models.MarketRecord, error)
}

// WeatherService produces the reshaped farm forecast.
type WeatherService interface {
	FarmForecast(ctx context.Context, district, state, language string) (models.FarmWeather, error)
}

// Subscriber registers a device token on a notification topic.
type Subscriber interface {
	Subscribe(ctx context.Context, token, topic string) error
}

// MediaStore resolves stored blob ids to download links.
type MediaStore interface {
	SignedURL(ctx context.Context, id string, ttl time.Duration) (string, error)
}

// Server wires the HTTP routes to the services.
type Server struct {
	echo    *echo.Echo
	logger  *slog.Logger
	chat    ChatService
	farms   FarmStore
	social  SocialStore
	market  MarketService
	weather WeatherService
	// subscriber is nil when push notifications are not configured.
	subscriber Subscriber
	media      MediaStore
	metrics    *metrics.Collector
}

// New builds the server and registers all routes.
func New(chatSvc ChatService, farms FarmStore, social SocialStore, market MarketService, weather WeatherService, subscriber Subscriber, media MediaStore, collector *metrics.Collector, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:       e,
		logger:     logger,
		chat:       chatSvc,
		farms:      farms,
		social:     social,
		market:     market,
		weather:    weather,
		subscriber: subscriber,
		media:      media,
		metrics:    collector,
	}

	e.Use(requestLogger(logger))
	s.routes()
	return s
}

func (s *Server) routes() {
	e := s.echo

	e.GET("/health", s.handleHealth)
	e.GET("/stats", s.handleStats)

	e.POST("/chat/message", s.handleChatMessage)
	e.POST("/chat/voice", s.handleChatVoice)
	e.GET("/chat/history/:user_id", s.handleChatHistory)
	e.DELETE("/chat/delete/:user_id", s.handleChatClear)

	e.POST("/image_detection/detect", s.handleImageDetection)
	e.GET("/media/:id", s.handleMedia)

	e.POST("/farmer/create", s.handleFarmerCreate)
	e.PUT("/farmer/update", s.handleFarmerUpdate)
	e.GET("/farmer/get/:id", s.handleFarmerGet)

	e.POST("/crops/create", s.handleCropCreate)
	e.GET("/crops/get/:id", s.handleCropsGet)

	e.POST("/posts/create", s.handlePostCreate)
	e.DELETE("/posts/delete/:id", s.handlePostDelete)
	e.GET("/posts/feed", s.handleFeed)
	e.POST("/posts/like/:id", s.handlePostLike)
	e.POST("/posts/dislike/:id", s.handlePostDislike)

	e.POST("/comments/create", s.handleCommentCreate)
	e.DELETE("/comments/delete/:id", s.handleCommentDelete)
	e.GET("/comments/post/:id", s.handleCommentsForPost)

	e.GET("/market/get", s.handleMarket)
	e.GET("/weather/get", s.handleWeather)
}

// Handler returns the HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start(port string) error {
	addr := ":" + port
	s.logger.Info("http server listening", "addr", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(c echo.Context) error {
	if s.metrics == nil {
		return c.JSON(http.StatusOK, map[string]any{})
	}
	return c.JSON(http.StatusOK, s.metrics.Snapshot())
}

// httpError maps storage sentinels onto status codes. Unknown errors are
// logged and returned as opaque 500s.
func (s *Server) httpError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, db.ErrNotFound), errors.Is(err, db.ErrNotOwner):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, db.ErrAlreadyExists):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("request failed", "path", c.Path(), "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
