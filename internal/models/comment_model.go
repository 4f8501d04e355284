package models

import "time"

// Comment is a text review left on an outfit.
type Comment struct {
	ID            string    `json:"id" firestore:"-"`
	UserID        string    `json:"userId" firestore:"userId"`
	Username      string    `json:"username" firestore:"username"`
	UserAvatarURL *string   `json:"userAvatarUrl" firestore:"userAvatarUrl"`
	Text          string    `json:"text" firestore:"text"`
	CreatedAt     time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}
