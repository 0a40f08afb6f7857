package service // package service orchestrates the auth flows on top of the stores and token service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/iliyamo/property-auth/internal/auth"
	"github.com/iliyamo/property-auth/internal/model"
	"github.com/iliyamo/property-auth/internal/queue"
	"github.com/iliyamo/property-auth/internal/repository"
)

// Sentinel errors returned by the auth service.  Handlers map these onto
// HTTP status codes; anything not in this set is an internal fault and must
// surface as a generic 500.
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidLandlord    = errors.New("invalid landlord id")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account is deactivated")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("forbidden")
)

// UserStore is the narrow view of user persistence the service depends on.
// *repository.UserRepo satisfies it; tests substitute an in-memory fake.
// Absent rows are reported as sql.ErrNoRows, matching database/sql.
type UserStore interface {
	Create(ctx context.Context, u *model.User) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByPhone(ctx context.Context, phone string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	LandlordExists(ctx context.Context, id uint64) (bool, error)
	ListByLandlord(ctx context.Context, landlordID uint64, role model.Role) ([]model.User, error)
}

// EventSink receives best-effort domain event notifications.  Implementations
// must never block the request flow on broker trouble; a nil sink disables
// publishing entirely.
type EventSink interface {
	UserRegistered(ctx context.Context, ev queue.UserRegisteredEvent)
	UserLoggedIn(ctx context.Context, ev queue.UserLoggedInEvent)
}

// RegisterInput carries the validated registration fields.  Validation of
// formats (email shape, password strength, phone pattern) happens at the
// handler boundary; the service enforces the business rules.
type RegisterInput struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      *string
	Password   string
	Role       model.Role
	LandlordID *uint64
}

// Auth implements register/login/logout/profile over the user store, the
// password hasher and the token service.
type Auth struct {
	users      UserStore
	tokens     *auth.TokenService
	bcryptCost int
	events     EventSink
}

func NewAuth(users UserStore, tokens *auth.TokenService, bcryptCost int, events EventSink) *Auth {
	return &Auth{users: users, tokens: tokens, bcryptCost: bcryptCost, events: events}
}

// phonePattern matches international numbers, optionally prefixed with '+'.
// Same shape the registration validation accepts for the phone field.
var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

// Register creates a new account and signs the user in immediately.
// Duplicate emails lose either at the pre-check or, under a racing
// registration, at the unique key; both surface as ErrEmailTaken.  A
// provided landlord linkage must reference an existing LANDLORD account.
func (s *Auth) Register(ctx context.Context, in RegisterInput) (model.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return model.User{}, "", ErrEmailTaken
	}
	if err != sql.ErrNoRows {
		return model.User{}, "", err
	}

	if in.LandlordID != nil {
		ok, err := s.users.LandlordExists(ctx, *in.LandlordID)
		if err != nil {
			return model.User{}, "", err
		}
		if !ok {
			return model.User{}, "", ErrInvalidLandlord
		}
	} else if in.Role == model.RoleAgent || in.Role == model.RoleTenant {
		// Linkage may be assigned later; flag it so orphaned accounts show
		// up in the logs.
		log.Printf("register: %s %q created without landlord linkage", in.Role, email)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return model.User{}, "", err
	}

	u := model.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        email,
		Phone:        in.Phone,
		PasswordHash: hash,
		Role:         in.Role,
		IsActive:     true,
		LandlordID:   in.LandlordID,
	}
	id, err := s.users.Create(ctx, &u)
	if err != nil {
		// A racing registration for the same email loses at the unique key
		// inside the store and must look identical to the pre-check loss.
		if errors.Is(err, repository.ErrEmailExists) {
			return model.User{}, "", ErrEmailTaken
		}
		return model.User{}, "", err
	}
	u.ID = id

	token, err := s.tokens.Issue(u.ID, u.Role, u.LandlordID)
	if err != nil {
		return model.User{}, "", err
	}

	if s.events != nil {
		s.events.UserRegistered(ctx, queue.UserRegisteredEvent{
			UserID:       u.ID,
			Email:        u.Email,
			Role:         string(u.Role),
			LandlordID:   u.LandlordID,
			RegisteredAt: time.Now().UTC().Format(time.RFC3339),
		})
	}
	return u, token, nil
}

// Login resolves the identifier as an email first and falls back to a phone
// lookup when the identifier looks like a phone number.  Unknown identifier
// and wrong password produce the same ErrInvalidCredentials so responses
// cannot be used to enumerate accounts.  A deactivated account is the one
// deliberate exception: its existence is already conceded, and the caller
// deserves to know why a correct password stopped working.
func (s *Auth) Login(ctx context.Context, identifier, password string) (model.User, string, error) {
	u, err := s.users.GetByEmail(ctx, identifier)
	if err == sql.ErrNoRows && phonePattern.MatchString(identifier) {
		u, err = s.users.GetByPhone(ctx, identifier)
	}
	if err == sql.ErrNoRows {
		return model.User{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, "", err
	}

	if !u.IsActive {
		return model.User{}, "", ErrAccountDeactivated
	}
	if !auth.VerifyPassword(u.PasswordHash, password) {
		return model.User{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID, u.Role, u.LandlordID)
	if err != nil {
		return model.User{}, "", err
	}

	if s.events != nil {
		s.events.UserLoggedIn(ctx, queue.UserLoggedInEvent{
			UserID:     u.ID,
			Role:       string(u.Role),
			LoggedInAt: time.Now().UTC().Format(time.RFC3339),
		})
	}
	return u, token, nil
}

// Logout revokes the presented token.  Idempotent: revoking twice, or
// revoking an already-invalid token, is harmless and still counts as a
// successful logout.
func (s *Auth) Logout(ctx context.Context, token string, userID uint64) {
	s.tokens.Revoke(ctx, token, userID)
}

// Profile fetches the caller's own record.  The account can vanish between
// token issuance and this call; that is ErrUserNotFound, not an internal
// fault.
func (s *Auth) Profile(ctx context.Context, userID uint64) (model.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err == sql.ErrNoRows {
		return model.User{}, ErrUserNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}

// UsersByRole lists the accounts managed by the calling landlord, optionally
// filtered by role.  The route applies the role middleware already; the
// check here keeps the scoping rule intact even if the service is reached
// through a different path.
func (s *Auth) UsersByRole(ctx context.Context, p model.Principal, role model.Role) ([]model.User, error) {
	if !auth.RoleAllowed(p, model.RoleLandlord) {
		return nil, ErrForbidden
	}
	return s.users.ListByLandlord(ctx, p.UserID, role)
}
