package models

import "time"

// ContentType is the fixed enumeration of things a user can save.
type ContentType string

const (
	ContentImage   ContentType = "image"
	ContentVideo   ContentType = "video"
	ContentArticle ContentType = "article"
	ContentAudio   ContentType = "audio"
	ContentTweet   ContentType = "tweet"
)

func (t ContentType) Valid() bool {
	switch t {
	case ContentImage, ContentVideo, ContentArticle, ContentAudio, ContentTweet:
		return true
	}
	return false
}

type Tag struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

type Content struct {
	ID        int64       `json:"id"`
	Link      string      `json:"link"`
	Type      ContentType `json:"type"`
	Title     string      `json:"title"`
	OwnerID   string      `json:"owner_id"`
	Tags      []string    `json:"tags"` // tag titles, resolved from the join table
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// ShareLink is a bearer capability: anyone holding the token can read the
// owner's current content set.
type ShareLink struct {
	Token     string    `json:"token"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}
