package core

import (
	"errors"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"google.golang.org/grpc/codes"

	"fitcheck-backend/internal/models"
)

const (
	MaxCaptionLength = 200
	MaxCommentLength = 500
	MaxTags          = 10
	MinUsername      = 3
	MaxUsername      = 20
	MinRating        = 1
	MaxRating        = 5
	FeedPageSize     = 12
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// invalid converts an ozzo validation failure into an InvalidArgument domain error.
func invalid(err error) error {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return wrapError(codes.InvalidArgument, verrs.Error(), err)
	}
	return wrapError(codes.InvalidArgument, err.Error(), err)
}

func validateOutfitRequest(req *models.CreateOutfitRequest) error {
	return invalid(validation.ValidateStruct(req,
		validation.Field(&req.ImageURL, validation.Required),
		validation.Field(&req.StoragePath, validation.Required),
		validation.Field(&req.Caption, validation.RuneLength(0, MaxCaptionLength)),
		validation.Field(&req.Tags, validation.Length(0, MaxTags)),
	))
}

func validateRating(value int) error {
	// Min and Max skip zero values, Required catches them.
	return invalid(validation.Validate(value,
		validation.Required.Error("rating value must be between 1 and 5"),
		validation.Min(MinRating),
		validation.Max(MaxRating),
	))
}

func validateCommentText(text string) error {
	return invalid(validation.Validate(strings.TrimSpace(text),
		validation.Required.Error("comment text is required"),
		validation.RuneLength(1, MaxCommentLength),
	))
}

func validateUsername(username string) error {
	return invalid(validation.Validate(strings.ToLower(username),
		validation.Required.Error("username is required"),
		validation.RuneLength(MinUsername, MaxUsername),
		validation.Match(usernamePattern).Error("username can only contain letters, numbers and underscores"),
	))
}

// validDocumentID reports whether id can name a Firestore document.
func validDocumentID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.Contains(id, "/") && len(id) <= 1500
}
