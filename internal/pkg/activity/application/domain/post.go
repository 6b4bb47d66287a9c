package activity

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	profile "github.com/kanaksh-py/startup-backend/internal/pkg/profile/application/domain"
)

const MaxPostRunes = 10000

var (
	ErrEmptyPost   = errors.New("activity: empty post")
	ErrPostTooLong = errors.New("activity: post too long")
)

// Post is the minimal feed entry written when a profile publishes.
type Post struct {
	ID        string      `json:"id"`
	Author    profile.Ref `json:"author"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

func NewPost(author profile.Ref, content string, now time.Time) (Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Post{}, ErrEmptyPost
	}
	if n := utf8.RuneCountInString(content); n > MaxPostRunes {
		return Post{}, fmt.Errorf("%w: %d > %d characters", ErrPostTooLong, n, MaxPostRunes)
	}
	return Post{ID: uuid.NewString(), Author: author, Content: content, CreatedAt: now.UTC()}, nil
}
