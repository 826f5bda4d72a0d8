package application

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/seidelmaycon/game-api/internal/domain/entity"
	repo "github.com/seidelmaycon/game-api/internal/domain/repository"
	"github.com/seidelmaycon/game-api/internal/infrastructure/billing"
	"github.com/seidelmaycon/game-api/pkg/helpers"
	"github.com/seidelmaycon/game-api/pkg/mailer"
	"github.com/seidelmaycon/game-api/pkg/validation"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrRequiredFields     = errors.New("email and password are required")
	ErrUserNotFound       = errors.New("user not found")
)

const (
	msgPasswordComplexity = "must be at least 8 characters and include at least one letter and one number"
	msgPasswordTooLong    = "is too long (maximum is 72 bytes)"
	msgEmailTaken         = "has already been taken"
	minPasswordLength     = 8
)

// SubscriptionLookup resolves a user's subscription status. It never fails.
type SubscriptionLookup interface {
	GetSubscriptionStatus(ctx context.Context, userID int64) billing.SubscriptionStatus
}

// JobPublisher enqueues background jobs such as emails.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

type UserService struct {
	Users   repo.UserRepository
	Events  repo.GameEventRepository
	JWT     *helpers.JWTManager
	Billing SubscriptionLookup
	Mail    JobPublisher
	Logger  *logrus.Logger

	// MailEnabled gates the welcome email; Mail may still be nil.
	MailEnabled bool
}

func NewUserService(users repo.UserRepository, events repo.GameEventRepository, jwt *helpers.JWTManager, lookup SubscriptionLookup, mail JobPublisher, mailEnabled bool, logger *logrus.Logger) *UserService {
	return &UserService{
		Users:       users,
		Events:      events,
		JWT:         jwt,
		Billing:     lookup,
		Mail:        mail,
		MailEnabled: mailEnabled,
		Logger:      logger,
	}
}

// Profile is a user annotated with play stats and billing status.
type Profile struct {
	User               *entity.User
	TotalGamesPlayed   int64
	SubscriptionStatus billing.SubscriptionStatus
}

// Session is an issued bearer token.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Register creates a user. Blank input yields ErrRequiredFields; rule
// violations yield *validation.Errors.
func (s *UserService) Register(ctx context.Context, email, password string) (*entity.User, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil, ErrRequiredFields
	}

	verrs := &validation.Errors{}
	if msg := passwordProblem(password); msg != "" {
		verrs.Add("password", msg)
	}
	if existing, err := s.Users.GetByEmail(ctx, email); err == nil && existing != nil {
		verrs.Add("email", msgEmailTaken)
	} else if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	if !verrs.Empty() {
		return nil, verrs
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{Email: email, PasswordHash: hash}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			verrs.Add("email", msgEmailTaken)
			return nil, verrs
		}
		return nil, err
	}

	s.enqueueWelcome(ctx, u)
	return u, nil
}

// passwordProblem returns the validation message for password, or "".
func passwordProblem(password string) string {
	if len(password) > helpers.MaxPasswordBytes {
		return msgPasswordTooLong
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			letter = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	if utf8.RuneCountInString(password) < minPasswordLength || !letter || !digit {
		return msgPasswordComplexity
	}
	return ""
}

func (s *UserService) enqueueWelcome(ctx context.Context, u *entity.User) {
	if !s.MailEnabled || s.Mail == nil {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: mailer.TemplateWelcome,
		Data:     map[string]any{"Email": u.Email},
	}
	if err := s.Mail.PublishJSON(ctx, job); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("enqueue welcome email failed")
		}
	}
}

// Authenticate checks email/password. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil || u == nil {
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
		helpers.CompareDummy(password)
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// CreateSession authenticates and issues an access token.
func (s *UserService) CreateSession(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	token, exp, err := s.JWT.GenerateAccessToken(u.ID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		}
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: exp}, nil
}

// GetProfile loads the profile of an authenticated user. The billing lookup
// runs on every call.
func (s *UserService) GetProfile(ctx context.Context, u *entity.User) (*Profile, error) {
	if u == nil {
		return nil, ErrUserNotFound
	}
	total, err := s.Events.CountByUser(ctx, u.ID, entity.EventTypeCompleted)
	if err != nil {
		return nil, err
	}
	status := billing.StatusUnknown
	if s.Billing != nil {
		status = s.Billing.GetSubscriptionStatus(ctx, u.ID)
	}
	return &Profile{User: u, TotalGamesPlayed: total, SubscriptionStatus: status}, nil
}
