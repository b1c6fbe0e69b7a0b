package account

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"auction-house/internal/auctionerrors"
	"auction-house/internal/auth"
	"auction-house/internal/models"
	"auction-house/internal/repository"
	"auction-house/utils"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxUsername     = 150
	maxName         = 150
	minPassword     = 8
	maxPasswordByte = 72 // bcrypt input limit
)

var (
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
	phonePattern    = regexp.MustCompile(`^[0-9]{9}$`)
)

// AccountService handles registration, sessions and user profiles
type AccountService struct {
	users    repository.UserDB
	auctions repository.AuctionDB
	tokens   *auth.TokenManager
	sessions *auth.Authenticator
	validate *validator.Validate
	cost     int
	now      func() time.Time
}

// NewAccountService creates a new AccountService instance
func NewAccountService(users repository.UserDB, auctions repository.AuctionDB, tokens *auth.TokenManager, sessions *auth.Authenticator) *AccountService {
	return &AccountService{
		users:    users,
		auctions: auctions,
		tokens:   tokens,
		sessions: sessions,
		validate: validator.New(),
		cost:     bcrypt.DefaultCost,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *AccountService) checkEmail(verr *auctionerrors.ValidationError, email string) {
	if err := s.validate.Var(email, "required,email"); err != nil {
		verr.Add("email", "enter a valid email address")
	}
}

func checkName(verr *auctionerrors.ValidationError, field, value string) {
	if utf8.RuneCountInString(value) > maxName {
		verr.Add(field, fmt.Sprintf("must be at most %d characters", maxName))
	}
}

func checkPhone(verr *auctionerrors.ValidationError, phone *string) {
	if phone != nil && *phone != "" && !phonePattern.MatchString(*phone) {
		verr.Add("phone_number", "phone number must be exactly 9 digits")
	}
}

func checkPassword(verr *auctionerrors.ValidationError, password, confirm string) {
	switch {
	case len(password) < minPassword:
		verr.Add("password", fmt.Sprintf("password must be at least %d characters", minPassword))
	case len(password) > maxPasswordByte:
		verr.Add("password", "password is too long")
	case password != confirm:
		verr.AddCause("confirm_password", auctionerrors.ErrPasswordMismatch)
	}
}

// Register creates an active user. Username and email must be unused and the
// password must match its confirmation.
func (s *AccountService) Register(ctx context.Context, in models.Registration) (models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)

	verr := &auctionerrors.ValidationError{}
	switch {
	case in.Username == "":
		verr.Add("username", "this field is required")
	case utf8.RuneCountInString(in.Username) > maxUsername || !usernamePattern.MatchString(in.Username):
		verr.Add("username", "letters, digits and @/./+/-/_ only, at most 150 characters")
	}
	s.checkEmail(verr, in.Email)
	checkName(verr, "first_name", in.FirstName)
	checkName(verr, "last_name", in.LastName)
	checkPhone(verr, in.PhoneNumber)
	checkPassword(verr, in.Password, in.ConfirmPassword)
	if err := verr.OrNil(); err != nil {
		return models.User{}, fmt.Errorf("service: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("service: hash password: %w", err)
	}

	user := models.User{
		ID:           utils.GenerateID(),
		Username:     in.Username,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: string(hash),
		Active:       true,
		CreatedAt:    s.now(),
		Account:      models.Account{PhoneNumber: emptyToNil(in.PhoneNumber), Birthday: in.Birthday},
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, auctionerrors.ErrDuplicateUsername):
			return models.User{}, fmt.Errorf("service: %w", auctionerrors.Invalid("username", auctionerrors.ErrDuplicateUsername))
		case errors.Is(err, auctionerrors.ErrDuplicateEmail):
			return models.User{}, fmt.Errorf("service: %w", auctionerrors.Invalid("email", auctionerrors.ErrDuplicateEmail))
		}
		return models.User{}, fmt.Errorf("service: failed to create user %q: %w", in.Username, err)
	}

	utils.Info("user registered", map[string]any{"user_id": user.ID, "username": user.Username})
	return user, nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// Login checks the credentials and issues a bearer token. Unknown users,
// wrong passwords and inactive accounts all yield ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, username, password string) (models.Session, error) {
	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, auctionerrors.ErrUserNotFound) {
			return models.Session{}, fmt.Errorf("service: %w", auctionerrors.ErrInvalidCredentials)
		}
		return models.Session{}, fmt.Errorf("service: failed to load user %q: %w", username, err)
	}
	if !user.Active || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.Session{}, fmt.Errorf("service: %w", auctionerrors.ErrInvalidCredentials)
	}

	token, claims, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return models.Session{}, fmt.Errorf("service: %w", err)
	}
	return models.Session{Token: token, ExpiresAt: claims.ExpiresAtTime().UTC(), User: user}, nil
}

// Logout revokes the token the caller authenticated with
func (s *AccountService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return fmt.Errorf("service: %w", auctionerrors.ErrUnauthorized)
	}
	if err := s.sessions.Revoke(ctx, claims); err != nil {
		return fmt.Errorf("service: logout %s: %w", claims.UserID, err)
	}
	return nil
}

// ResetPassword sets a new password for the caller
func (s *AccountService) ResetPassword(ctx context.Context, userID string, in models.PasswordChange) error {
	if userID == "" {
		return fmt.Errorf("service: %w", auctionerrors.ErrUnauthorized)
	}
	verr := &auctionerrors.ValidationError{}
	checkPassword(verr, in.Password, in.ConfirmPassword)
	if err := verr.OrNil(); err != nil {
		return fmt.Errorf("service: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return fmt.Errorf("service: hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("service: failed to update password of %s: %w", userID, err)
	}
	return nil
}

// EditProfile updates names, email and account data of userID. Only the user
// themselves may do it.
func (s *AccountService) EditProfile(ctx context.Context, callerID, userID string, in models.ProfileUpdate) (models.User, error) {
	if callerID == "" {
		return models.User{}, fmt.Errorf("service: %w", auctionerrors.ErrUnauthorized)
	}
	if callerID != userID {
		return models.User{}, fmt.Errorf("service: edit profile of %s: %w", userID, auctionerrors.ErrPermissionDenied)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return models.User{}, fmt.Errorf("service: failed to load user %s: %w", userID, err)
	}

	in.Email = normalizeEmail(in.Email)
	verr := &auctionerrors.ValidationError{}
	if in.Email != "" {
		s.checkEmail(verr, in.Email)
	}
	checkName(verr, "first_name", in.FirstName)
	checkName(verr, "last_name", in.LastName)
	checkPhone(verr, in.PhoneNumber)
	if err := verr.OrNil(); err != nil {
		return models.User{}, fmt.Errorf("service: %w", err)
	}

	user.FirstName = in.FirstName
	user.LastName = in.LastName
	if in.Email != "" {
		user.Email = in.Email
	}
	if in.PhoneNumber != nil {
		user.PhoneNumber = emptyToNil(in.PhoneNumber)
	}
	if in.Birthday != nil {
		user.Birthday = in.Birthday
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, auctionerrors.ErrDuplicateEmail) {
			return models.User{}, fmt.Errorf("service: %w", auctionerrors.Invalid("email", auctionerrors.ErrDuplicateEmail))
		}
		return models.User{}, fmt.Errorf("service: failed to update user %s: %w", userID, err)
	}
	return user, nil
}

// GetProfile returns a user by username with a page of their bids, newest first
func (s *AccountService) GetProfile(ctx context.Context, username string, page models.Page) (models.UserProfile, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("service: failed to get user %q: %w", username, err)
	}
	bids, err := s.auctions.GetBidsByUser(ctx, user.ID, page)
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("service: failed to get bids of %q: %w", username, err)
	}
	return models.UserProfile{User: user, Bids: bids}, nil
}

// ListUsers returns a page of users ordered by username
func (s *AccountService) ListUsers(ctx context.Context, page models.Page) ([]models.User, error) {
	users, err := s.users.ListUsers(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list users: %w", err)
	}
	return users, nil
}

// emails are stored lower-cased so uniqueness ignores case
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
