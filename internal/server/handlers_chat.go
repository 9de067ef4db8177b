package server

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

type chatMessageRequest struct {
	UserID   string `json:"user_id"`
	Message  string `json:"message"`
	Language string `json:"language"`
}

func (s *Server) handleChatMessage(c echo.Context) error {
	var req chatMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.UserID == "" || req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id and message are required")
	}

	res, err := s.chat.PostTextMessage(c.Request().Context(), req.UserID, req.Message, req.Language)
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// handleChatVoice accepts a multipart form with an "audio" file plus
// user_id and language fields.
func (s *Server) handleChatVoice(c echo.Context) error {
	userID := c.FormValue("user_id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	audio, err := readFormFile(c, "audio")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := s.chat.PostVoiceMessage(c.Request().Context(), userID, audio, c.FormValue("language"))
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// handleImageDetection accepts a multipart form with an "image" file plus
// user_id and language fields and runs the diagnosis pipeline.
func (s *Server) handleImageDetection(c echo.Context) error {
	userID := c.FormValue("user_id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "image file is required")
	}
	image, err := readFileHeader(fh)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := s.chat.PostDiagnosis(c.Request().Context(), userID, image,
		fh.Header.Get("Content-Type"), c.FormValue("language"))
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) handleChatHistory(c echo.Context) error {
	userID := c.Param("user_id")
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
		}
		limit = n
	}
	turns, err := s.chat.History(c.Request().Context(), userID, limit)
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"user_id": userID, "history": turns})
}

func (s *Server) handleChatClear(c echo.Context) error {
	userID := c.Param("user_id")
	if err := s.chat.Clear(c.Request().Context(), userID); err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "cleared", "user_id": userID})
}

// handleMedia redirects to a short-lived download link for a stored blob,
// so history clients can fetch the image behind a file reference.
func (s *Server) handleMedia(c echo.Context) error {
	if s.media == nil {
		return echo.NewHTTPError(http.StatusNotFound, "media storage not configured")
	}
	url, err := s.media.SignedURL(c.Request().Context(), c.Param("id"), 15*time.Minute)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "unknown media id")
	}
	return c.Redirect(http.StatusFound, url)
}

func readFormFile(c echo.Context, field string) ([]byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("%s file is required", field)
	}
	return readFileHeader(fh)
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return data, nil
}
