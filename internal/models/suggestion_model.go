package models

import "time"

// AISuggestion is the single live stylist suggestion for an outfit, keyed by outfit ID.
// PromptSnapshot is the exact text sent to the model.
type AISuggestion struct {
	OutfitID                  string    `json:"outfitId" firestore:"outfitId"`
	UserID                    string    `json:"userId" firestore:"userId"`
	Suggestion                string    `json:"suggestion" firestore:"suggestion"`
	PromptSnapshot            string    `json:"promptSnapshot" firestore:"promptSnapshot"`
	GeneratedAt               time.Time `json:"generatedAt" firestore:"generatedAt,serverTimestamp"`
	ModelVersion              string    `json:"modelVersion" firestore:"modelVersion"`
	RatingCountAtGeneration   int       `json:"ratingCountAtGeneration" firestore:"ratingCountAtGeneration"`
	AverageRatingAtGeneration float64   `json:"averageRatingAtGeneration" firestore:"averageRatingAtGeneration"`
}
