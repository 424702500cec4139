package domain

import "fmt"

// Comment is a stored feed entry. Identity is not persisted, it is
// derived from list position at read time.
type Comment struct {
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// CommentView is the API projection of a Comment. ID is the 1-based
// position in the stored sequence and Nick is synthesized from it, so
// both are display ranks rather than stable identities.
type CommentView struct {
	ID        int    `json:"id"`
	Nick      string `json:"nick"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// NewCommentView projects a stored comment at the given 1-based position.
func NewCommentView(position int, c Comment) CommentView {
	return CommentView{
		ID:        position,
		Nick:      fmt.Sprintf("Anonymous%d", position),
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}
