package models

// CreateOutfitRequest represents the request body for posting a new outfit.
// The image is uploaded by the client beforehand; only its references are sent here.
type CreateOutfitRequest struct {
	ImageURL    string   `json:"imageUrl" binding:"required"`
	StoragePath string   `json:"storagePath" binding:"required"`
	Caption     string   `json:"caption"`
	Tags        []string `json:"tags"`
}

// SubmitRatingRequest represents the request body for rating an outfit.
type SubmitRatingRequest struct {
	Value int `json:"value" binding:"required"`
}

// AddCommentRequest represents the request body for commenting on an outfit.
type AddCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// InitializeProfileRequest carries the optional profile fields chosen at sign-up.
type InitializeProfileRequest struct {
	Username    string  `json:"username"`
	DisplayName string  `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl"`
}

// GenerateSuggestionRequest is the payload of the generateSuggestion callable.
type GenerateSuggestionRequest struct {
	OutfitID string `json:"outfitId"`
}

// GenerateSuggestionResponse is the result of the generateSuggestion callable.
type GenerateSuggestionResponse struct {
	Suggestion string `json:"suggestion"`
}
