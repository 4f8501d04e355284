package api

import "fitcheck-backend/internal/models"

// ErrorResponse is the error body of every REST endpoint. Code is the
// lowercase status name clients switch on, e.g. "resource-exhausted".
type ErrorResponse struct {
	Error             string `json:"error"`
	Code              string `json:"code"`
	RetryAfterMinutes int    `json:"retryAfterMinutes,omitempty"`
}

// SuccessResponse is a generic structure for simple success messages.
type SuccessResponse struct {
	Message string `json:"message"`
}

// FeedResponse is one page of the outfit feed. NextCursor is empty on the last page.
type FeedResponse struct {
	Outfits    []*models.Outfit `json:"outfits"`
	NextCursor string           `json:"nextCursor,omitempty"`
}

// InitializeProfileResponse reports whether the profile was created by this call.
type InitializeProfileResponse struct {
	Profile *models.UserProfile `json:"profile"`
	Created bool                `json:"created"`
}

// callableRequest is the Firebase callable protocol request envelope.
type callableRequest struct {
	Data models.GenerateSuggestionRequest `json:"data"`
}

// callableResponse is the Firebase callable protocol success envelope.
type callableResponse struct {
	Result any `json:"result"`
}

// callableErrorBody is the Firebase callable protocol error envelope.
type callableErrorBody struct {
	Error callableError `json:"error"`
}

type callableError struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Details *callableDetail `json:"details,omitempty"`
}

type callableDetail struct {
	RetryAfterMinutes int `json:"retryAfterMinutes"`
}
