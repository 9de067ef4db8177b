package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type postCreateRequest struct {
	UserID      string `json:"user_id"`
	ContentURL  string `json:"content_url"`
	ContentDesc string `json:"content_desc"`
}

func (s *Server) handlePostCreate(c echo.Context) error {
	var req postCreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}
	if req.ContentURL == "" && req.ContentDesc == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "post needs content")
	}

	post, err := s.social.CreatePost(c.Request().Context(), req.UserID, req.ContentURL, req.ContentDesc)
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusCreated, post)
}

// handlePostDelete removes a post and its comments. Only the author may
// delete.
func (s *Server) handlePostDelete(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}
	if err := s.social.DeletePost(c.Request().Context(), c.Param("id"), userID); err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleFeed(c echo.Context) error {
	limit, offset := pagination(c, 20)
	posts, err := s.social.Feed(c.Request().Context(), limit, offset)
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, posts)
}

func (s *Server) handlePostLike(c echo.Context) error {
	if err := s.social.LikePost(c.Request().Context(), c.Param("id")); err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "liked"})
}

func (s *Server) handlePostDislike(c echo.Context) error {
	if err := s.social.DislikePost(c.Request().Context(), c.Param("id")); err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "disliked"})
}

type commentCreateRequest struct {
	PostID  string `json:"post_id"`
	UserID  string `json:"user_id"`
	Content string `json:"content"`
}

func (s *Server) handleCommentCreate(c echo.Context) error {
	var req commentCreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.PostID == "" || req.UserID == "" || req.Content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "post_id, user_id and content are required")
	}

	comment, err := s.social.CreateComment(c.Request().Context(), req.PostID, req.UserID, req.Content)
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusCreated, comment)
}

func (s *Server) handleCommentDelete(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}
	if err := s.social.DeleteComment(c.Request().Context(), c.Param("id"), userID); err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleCommentsForPost(c echo.Context) error {
	limit, offset := pagination(c, 50)
	comments, err := s.social.CommentsForPost(c.Request().Context(), c.Param("id"), limit, offset)
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, comments)
}

func pagination(c echo.Context, defaultLimit int) (limit, offset int) {
	limit = defaultLimit
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 {
		limit = v
	}
	if v, err := strconv.Atoi(c.QueryParam("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}
