package userservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/sushihentaime/blogapi/internal/common"
)

var (
	ErrAuthenticationFailure = errors.New("invalid email or password")
)

func NewUserService(db *sql.DB, mb common.MessageProducer, c *common.Cache, tokens *TokenMaker, logger *slog.Logger) *UserService {
	return &UserService{
		m:      newUserModel(db),
		mb:     mb,
		c:      c,
		tokens: tokens,
		logger: logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser registers a new account, publishes a user.created event and returns an identity token.
func (s *UserService) CreateUser(ctx context.Context, req *SignupRequest) (*AuthResult, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = normalizeEmail(req.Email)
	if req.Bio != nil {
		bio := strings.TrimSpace(*req.Bio)
		req.Bio = &bio
	}

	v := common.NewValidator()
	validateSignup(v, req)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	u := User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	}
	if req.Bio != nil {
		u.Bio = *req.Bio
	}

	err := u.Password.set(req.Password)
	if err != nil {
		return nil, err
	}

	// the unique index on email is what rejects concurrent duplicate signups
	err = s.m.insert(ctx, &u)
	if err != nil {
		return nil, err
	}

	s.publishUserCreated(ctx, &u)

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: &u, Token: token}, nil
}

// publishUserCreated is best effort: the account already exists, so a broker failure is only logged.
func (s *UserService) publishUserCreated(ctx context.Context, u *User) {
	if s.mb == nil {
		return
	}

	data, err := json.Marshal(common.UserCreatedMessage{
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	})
	if err != nil {
		s.logger.Error("could not marshal user.created event", slog.String("error", err.Error()))
		return
	}

	err = s.mb.Publish(ctx, common.UserCreatedRoute, data)
	if err != nil {
		s.logger.Error("could not publish user.created event", slog.String("user_id", u.ID.String()), slog.String("error", err.Error()))
	}
}

// LoginUser verifies the credentials and returns a fresh identity token.
// Unknown email and wrong password both yield ErrAuthenticationFailure.
func (s *UserService) LoginUser(ctx context.Context, req *LoginRequest) (*AuthResult, error) {
	req.Email = normalizeEmail(req.Email)

	v := common.NewValidator()
	validateLogin(v, req)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	user, err := s.m.getByEmail(ctx, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			dummy := Password{hash: dummyHash}
			_, _ = dummy.compare(req.Password)
			return nil, ErrAuthenticationFailure
		default:
			return nil, err
		}
	}

	ok, err := user.Password.compare(req.Password)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, ErrAuthenticationFailure
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Token: token}, nil
}

// GetUserByAccessToken resolves a bearer token to its user. Any failure to do so is ErrInvalidToken,
// except for storage errors which are returned as is.
func (s *UserService) GetUserByAccessToken(ctx context.Context, token string) (*User, error) {
	id, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	key := common.CacheKeyUserByID(id)
	if cached, ok := s.c.Get(key); ok {
		if u, ok := cached.(*User); ok {
			return u, nil
		}
	}

	user, err := s.m.getByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, ErrInvalidToken
		default:
			return nil, err
		}
	}

	s.c.Set(key, user, UserCacheTime)

	return user, nil
}

func (u *User) IsAnonymous() bool {
	return u == AnonymousUser
}
