package models

import "time"

// Outfit is a posted photo with caption, tags and derived rating/comment aggregates.
// RatingCount and AverageRating are only ever written by the rating aggregator.
type Outfit struct {
	ID                      string     `json:"id" firestore:"-"` // Document ID, auto-generated
	UserID                  string     `json:"userId" firestore:"userId"` // Firebase Auth UID of the owner
	Username                string     `json:"username" firestore:"username"`
	UserAvatarURL           *string    `json:"userAvatarUrl" firestore:"userAvatarUrl"`
	ImageURL                string     `json:"imageUrl" firestore:"imageUrl"`
	StoragePath             string     `json:"storagePath" firestore:"storagePath"`
	Caption                 string     `json:"caption" firestore:"caption"`
	Tags                    []string   `json:"tags" firestore:"tags"`
	CreatedAt               time.Time  `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	RatingCount             int        `json:"ratingCount" firestore:"ratingCount"`
	AverageRating           float64    `json:"averageRating" firestore:"averageRating"`
	CommentCount            int        `json:"commentCount" firestore:"commentCount"`
	AISuggestionGeneratedAt *time.Time `json:"aiSuggestionGeneratedAt" firestore:"aiSuggestionGeneratedAt"`
}
