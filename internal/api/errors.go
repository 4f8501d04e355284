package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"

	"fitcheck-backend/internal/core"
	"fitcheck-backend/internal/middleware"
)

const internalErrorMessage = "An unexpected internal server error occurred."

// statusMapping is how one domain code appears on each transport.
type statusMapping struct {
	httpStatus int
	name       string // REST code, e.g. "not-found"
	callable   string // callable protocol status, e.g. "NOT_FOUND"
}

var statusTable = map[codes.Code]statusMapping{
	codes.InvalidArgument:    {http.StatusBadRequest, "invalid-argument", "INVALID_ARGUMENT"},
	codes.FailedPrecondition: {http.StatusBadRequest, "failed-precondition", "FAILED_PRECONDITION"},
	codes.Unauthenticated:    {http.StatusUnauthorized, "unauthenticated", "UNAUTHENTICATED"},
	codes.PermissionDenied:   {http.StatusForbidden, "permission-denied", "PERMISSION_DENIED"},
	codes.NotFound:           {http.StatusNotFound, "not-found", "NOT_FOUND"},
	codes.AlreadyExists:      {http.StatusConflict, "already-exists", "ALREADY_EXISTS"},
	codes.ResourceExhausted:  {http.StatusTooManyRequests, "resource-exhausted", "RESOURCE_EXHAUSTED"},
	// Upstream failures surface as internal on the callable protocol.
	codes.Unavailable: {http.StatusBadGateway, "internal", "INTERNAL"},
	codes.Internal:    {http.StatusInternalServerError, "internal", "INTERNAL"},
}

// resolve returns the transport mapping, the client-safe message and the
// retry hint for err. Errors that are not domain errors are logged and hidden.
func resolve(logger *zap.Logger, c *gin.Context, err error) (statusMapping, string, int) {
	var de *core.Error
	if !errors.As(err, &de) {
		logger.Error("Internal Server Error",
			zap.String("path", c.Request.URL.Path), zap.String("method", c.Request.Method), zap.Error(err))
		_ = c.Error(err)
		return statusTable[codes.Internal], internalErrorMessage, 0
	}

	m, ok := statusTable[de.Code]
	if !ok {
		m = statusTable[codes.Internal]
	}
	msg := de.Message
	if msg == "" {
		msg = internalErrorMessage
	}
	if m.httpStatus >= http.StatusInternalServerError {
		logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		_ = c.Error(err)
	}
	return m, msg, de.RetryAfterMinutes
}

// writeError sends err as a REST ErrorResponse.
func writeError(logger *zap.Logger, c *gin.Context, err error) {
	m, msg, retryAfter := resolve(logger, c, err)
	if retryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(retryAfter*60))
	}
	c.JSON(m.httpStatus, ErrorResponse{Error: msg, Code: m.name, RetryAfterMinutes: retryAfter})
}

// writeCallableError sends err in the callable protocol error envelope.
func writeCallableError(logger *zap.Logger, c *gin.Context, err error) {
	m, msg, retryAfter := resolve(logger, c, err)
	body := callableErrorBody{Error: callableError{Status: m.callable, Message: msg}}
	if retryAfter > 0 {
		body.Error.Details = &callableDetail{RetryAfterMinutes: retryAfter}
	}
	c.JSON(m.httpStatus, body)
}

// badRequest reports a malformed request body or parameter.
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: statusTable[codes.InvalidArgument].name})
}

// requireUser returns the authenticated caller or writes a 401.
func requireUser(c *gin.Context) (string, bool) {
	userID := middleware.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User ID not found in context", Code: statusTable[codes.Unauthenticated].name})
		return "", false
	}
	return userID, true
}
