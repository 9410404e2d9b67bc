package blogservice

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type State string

const (
	StateDraft     State = "draft"
	StatePublished State = "published"

	// StateMine asks the listing for every blog of the requester regardless of state.
	StateMine = "mine"
	// StateMyBlogs is the older spelling of StateMine, still accepted.
	StateMyBlogs = "my-blogs"
)

// Author is the public projection of a blog's author. Bio is only filled on single blog reads.
type Author struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Bio       *string   `json:"bio,omitempty"`
}

type Blog struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	AuthorID    uuid.UUID `json:"-"`
	Author      Author    `json:"author"`
	State       State     `json:"state"`
	ReadCount   int       `json:"read_count"`
	ReadingTime int       `json:"reading_time"`
	Tags        []string  `json:"tags"`
	// Body is stored in Markdown format.
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Version   int       `json:"-"`
}

type BlogModel struct {
	db *sql.DB
}

type BlogService struct {
	m *BlogModel
}

type CreateBlogRequest struct {
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Tags        []string  `json:"tags"`
	Body        string    `json:"body"`
	State       *string   `json:"state"`
	AuthorID    uuid.UUID `json:"-"`
}

// UpdateBlogRequest carries a partial update; nil fields are left untouched.
type UpdateBlogRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Tags        []string `json:"tags"`
	Body        *string  `json:"body"`
	State       *string  `json:"state"`
}
