package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/crypto/bcrypt"

	"taskboard-service/logging"
	"taskboard-service/models"
	"taskboard-service/repositories"
)

const (
	minPasswordLength = 8
	// bcrypt rejects longer input.
	maxPasswordBytes = 72
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type RegisterInput struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserService struct {
	Users      repositories.UserRepository
	JWTService *JWTService
	IDs        *IDGenerator
	BlackList  map[string]bool
	BcryptCost int
	Breaker    *gobreaker.CircuitBreaker
	Now        func() time.Time
}

func NewUserService(users repositories.UserRepository, jwtService *JWTService, ids *IDGenerator, blackList map[string]bool, bcryptCost int, breaker *gobreaker.CircuitBreaker) *UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{
		Users:      users,
		JWTService: jwtService,
		IDs:        ids,
		BlackList:  blackList,
		BcryptCost: bcryptCost,
		Breaker:    breaker,
		Now:        time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidatePassword enforces the length bounds and the blacklist.
func (s *UserService) ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return invalid(fmt.Sprintf("password must be at least %d characters long", minPasswordLength))
	}
	if len(password) > maxPasswordBytes {
		return invalid(fmt.Sprintf("password must be at most %d bytes long", maxPasswordBytes))
	}
	if s.BlackList[password] {
		return invalid("password is too common. Please choose a stronger one")
	}
	return nil
}

// Register creates an account with a hashed password.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if email == "" || name == "" || in.Password == "" {
		return nil, invalid("email, name and password are required")
	}
	if !emailPattern.MatchString(email) {
		return nil, invalid("invalid email format")
	}
	if err := s.ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	_, err := guard(s.Breaker, func() (*models.User, error) {
		return s.Users.FindByEmail(ctx, email)
	})
	switch {
	case err == nil:
		logging.Logger.Warnf("Event ID: USER_ALREADY_EXISTS, Description: Registration rejected for %s", email)
		return nil, ErrConflict
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := guard(s.Breaker, func() (string, error) {
		return s.IDs.New(ctx, s.Users)
	})
	if err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	user := &models.User{
		ID:        id,
		Email:     email,
		Name:      name,
		Password:  string(hashed),
		IsAdmin:   false,
		IsUser:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = guardErr(s.Breaker, func() error {
		return s.Users.Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	logging.Logger.Infof("Event ID: USER_REGISTERED, Description: User %s registered with id %s", email, id)
	return user, nil
}

// Login verifies the credentials and returns a signed token.
func (s *UserService) Login(ctx context.Context, in LoginInput) (string, *models.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return "", nil, invalid("email and password are required")
	}

	user, err := guard(s.Breaker, func() (*models.User, error) {
		return s.Users.FindByEmail(ctx, email)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			logging.Logger.Warnf("Event ID: LOGIN_FAILED, Description: Unknown email %s", email)
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if user.Deleted() {
		logging.Logger.Warnf("Event ID: LOGIN_FAILED, Description: Account %s is deleted", user.ID)
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		logging.Logger.Warnf("Event ID: LOGIN_FAILED, Description: Wrong password for %s", user.ID)
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.JWTService.GenerateAuthToken(user)
	if err != nil {
		return "", nil, err
	}
	logging.Logger.Infof("Event ID: LOGIN_SUCCESS, Description: User %s logged in", user.ID)
	return token, user, nil
}
