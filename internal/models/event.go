package models

import "time"

type PostEventType string

const (
	EventPostCreated    PostEventType = "post_created"
	EventPostDeleted    PostEventType = "post_deleted"
	EventPostLiked      PostEventType = "post_liked"
	EventPostUnliked    PostEventType = "post_unliked"
	EventCommentAdded   PostEventType = "comment_added"
	EventCommentRemoved PostEventType = "comment_removed"
)

// PostEvent is published on post activity and forwarded to stream subscribers.
type PostEvent struct {
	Type      PostEventType `json:"type"`
	PostID    string        `json:"post_id"`
	UserID    string        `json:"user_id"`
	CommentID string        `json:"comment_id,omitempty"`
	Likes     int           `json:"likes"`
	Comments  int           `json:"comments"`
	At        time.Time     `json:"at"`
}
