package userservice

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sushihentaime/blogapi/internal/common"
)

const (
	UserCacheTime time.Duration = 5 * time.Minute
)

// AnonymousUser represents a request without an Authorization header.
var AnonymousUser = &User{}

type UserService struct {
	m      *UserModel
	mb     common.MessageProducer
	c      *common.Cache
	tokens *TokenMaker
	logger *slog.Logger
}

type UserModel struct {
	db *sql.DB
}

type User struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Password  Password  `json:"-"`
	Avatar    *string   `json:"avatar"`
	Bio       string    `json:"bio"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Version   int       `json:"-"`
}

// Password only ever holds the bcrypt hash.
type Password struct {
	hash []byte
}

type SignupRequest struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	Bio       *string `json:"bio"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
