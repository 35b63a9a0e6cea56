package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/lock"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/model"
)

// writeError maps a service error onto its HTTP status and error code.
// Unknown errors are logged and reported as 500 without detail.
func writeError(c *gin.Context, err error, msg string) {
	ctx := c.Request.Context()

	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, msg, "error", err, "code", code)
	} else {
		slog.WarnContext(ctx, msg, "error", err, "code", code)
	}

	body := gin.H{"error": err.Error(), "code": code}
	if code == "internal" {
		body["error"] = msg
	}
	c.JSON(status, body)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, model.ErrInvalidState):
		return http.StatusConflict, "invalid_state"
	case errors.Is(err, model.ErrOracleUnavailable):
		return http.StatusServiceUnavailable, "oracle_unavailable"
	case errors.Is(err, lock.ErrLockTimeout):
		return http.StatusServiceUnavailable, "lock_timeout"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func badRequest(c *gin.Context, err error) {
	slog.WarnContext(c.Request.Context(), "invalid request", "error", err)
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid_input"})
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name, "code": "invalid_input"})
		return 0, false
	}
	return id, true
}
