package models

import "time"

// UserStats holds the derived per-user aggregates. They are recomputed from the
// user's outfits, never patched incrementally by the aggregator.
type UserStats struct {
	OutfitCount           int     `json:"outfitCount" firestore:"outfitCount"`
	TotalRatingsReceived  int     `json:"totalRatingsReceived" firestore:"totalRatingsReceived"`
	AverageRatingReceived float64 `json:"averageRatingReceived" firestore:"averageRatingReceived"`
}

// UserProfile represents a user in the system.
type UserProfile struct {
	UID         string    `json:"uid" firestore:"-"` // Firebase Auth UID, will be the document ID
	Username    string    `json:"username" firestore:"username"`
	DisplayName string    `json:"displayName" firestore:"displayName"`
	AvatarURL   *string   `json:"avatarUrl" firestore:"avatarUrl"`
	Bio         string    `json:"bio" firestore:"bio"`
	Stats       UserStats `json:"stats" firestore:"stats"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt   time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}
