package models

import "time"

// Rating is one user's 1-5 score for an outfit. The document ID is the rater's UID,
// so there is at most one rating per (outfit, user) pair.
type Rating struct {
	UserID    string    `json:"userId" firestore:"userId"`
	Value     int       `json:"value" firestore:"value"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"` // Preserved across re-votes
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}
