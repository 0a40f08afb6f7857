package handler

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/property-auth/internal/middleware"
	"github.com/iliyamo/property-auth/internal/model"
	"github.com/iliyamo/property-auth/internal/service"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Svc *service.Auth
}

func NewAuthHandler(svc *service.Auth) *AuthHandler { return &AuthHandler{Svc: svc} }

// ----- envelope -----

// envelope is the response shape shared by every endpoint:
// {success, message, data?, errors?}.
type envelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    interface{}  `json:"data,omitempty"`
	Errors  []fieldError `json:"errors,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func ok(c echo.Context, status int, msg string, data interface{}) error {
	return c.JSON(status, envelope{Success: true, Message: msg, Data: data})
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, envelope{Success: false, Message: msg})
}

func failValidation(c echo.Context, errs []fieldError) error {
	return c.JSON(http.StatusBadRequest, envelope{Success: false, Message: "Validation failed", Errors: errs})
}

// ----- DTOs -----

type registerReq struct {
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Password   string  `json:"password"`
	Role       string  `json:"role"`
	LandlordID *uint64 `json:"landlord_id"`
}

type loginReq struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// authUser is the public projection returned from register/login.  The
// password hash never appears in any response type.
type authUser struct {
	ID         uint64  `json:"id"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Email      string  `json:"email"`
	Phone      *string `json:"phone,omitempty"`
	Role       string  `json:"role"`
	LandlordID *uint64 `json:"landlord_id,omitempty"`
}

// profileResp extends authUser with account state and timestamps for /me.
type profileResp struct {
	authUser
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type authData struct {
	AccessToken string   `json:"access_token"`
	User        authUser `json:"user"`
}

func toAuthUser(u model.User) authUser {
	return authUser{
		ID:         u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		Phone:      u.Phone,
		Role:       string(u.Role),
		LandlordID: u.LandlordID,
	}
}

// ----- validation -----

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
)

const passwordSpecials = "@$!%*?&"

// validateRegister applies the registration field rules.  All violations are
// collected so the client gets the full list in one round trip.
func validateRegister(req *registerReq) []fieldError {
	var errs []fieldError

	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)

	if n := len(req.FirstName); n < 2 || n > 50 {
		errs = append(errs, fieldError{"first_name", "First name must be between 2 and 50 characters"})
	}
	if n := len(req.LastName); n < 2 || n > 50 {
		errs = append(errs, fieldError{"last_name", "Last name must be between 2 and 50 characters"})
	}
	if !emailPattern.MatchString(req.Email) {
		errs = append(errs, fieldError{"email", "Please provide a valid email address"})
	}
	if req.Phone != "" && !phonePattern.MatchString(req.Phone) {
		errs = append(errs, fieldError{"phone", "Phone must be a valid international number"})
	}
	if msg := passwordIssue(req.Password); msg != "" {
		errs = append(errs, fieldError{"password", msg})
	}
	if _, okRole := model.ParseRole(strings.ToUpper(strings.TrimSpace(req.Role))); !okRole {
		errs = append(errs, fieldError{"role", "Role must be one of: LANDLORD, AGENT, TENANT"})
	}
	if req.LandlordID != nil && *req.LandlordID == 0 {
		errs = append(errs, fieldError{"landlord_id", "Landlord ID must be a positive number"})
	}
	return errs
}

// passwordIssue checks the password policy: at least 8 characters with an
// uppercase letter, a lowercase letter, a digit and a special character.
func passwordIssue(pw string) string {
	if len(pw) < 8 {
		return "Password must be at least 8 characters"
	}
	var upper, lower, digit, special bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	if !upper || !lower || !digit || !special {
		return "Password must contain at least one uppercase letter, one lowercase letter, one number, and one special character"
	}
	return ""
}

// reqCtx bounds store work for a single request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// ----- endpoints -----

// Register: create a user and sign them in immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if errs := validateRegister(&req); len(errs) > 0 {
		return failValidation(c, errs)
	}
	role, _ := model.ParseRole(strings.ToUpper(strings.TrimSpace(req.Role)))

	var phone *string
	if req.Phone != "" {
		phone = &req.Phone
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, token, err := h.Svc.Register(ctx, service.RegisterInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      phone,
		Password:   req.Password,
		Role:       role,
		LandlordID: req.LandlordID,
	})
	switch err {
	case nil:
	case service.ErrEmailTaken:
		return fail(c, http.StatusConflict, "Email already registered")
	case service.ErrInvalidLandlord:
		return fail(c, http.StatusBadRequest, "Invalid landlord ID or landlord not found")
	default:
		c.Logger().Errorf("register failed: %v", err)
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}

	return ok(c, http.StatusCreated, "Registration successful", authData{
		AccessToken: token,
		User:        toAuthUser(u),
	})
}

// Login: verify credentials and return a fresh token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	req.Identifier = strings.ToLower(strings.TrimSpace(req.Identifier))
	if req.Identifier == "" || req.Password == "" {
		return failValidation(c, []fieldError{
			{"identifier", "Email or phone is required"},
			{"password", "Password is required"},
		})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, token, err := h.Svc.Login(ctx, req.Identifier, req.Password)
	switch err {
	case nil:
	case service.ErrInvalidCredentials:
		return fail(c, http.StatusUnauthorized, "Invalid credentials")
	case service.ErrAccountDeactivated:
		return fail(c, http.StatusForbidden, "Account is deactivated")
	default:
		c.Logger().Errorf("login failed: %v", err)
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}

	return ok(c, http.StatusOK, "Login successful", authData{
		AccessToken: token,
		User:        toAuthUser(u),
	})
}

// Logout: revoke the presented token.  Always succeeds once the request has
// passed the authentication gate; a failed blacklist write degrades to the
// token dying at its natural expiry.
func (h *AuthHandler) Logout(c echo.Context) error {
	p, okP := middleware.Principal(c)
	if !okP {
		return fail(c, http.StatusUnauthorized, "Unauthorized")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	h.Svc.Logout(ctx, middleware.BearerToken(c), p.UserID)
	return ok(c, http.StatusOK, "Logout successful", nil)
}

// Me: return the caller's own profile.
func (h *AuthHandler) Me(c echo.Context) error {
	p, okP := middleware.Principal(c)
	if !okP {
		return fail(c, http.StatusUnauthorized, "Unauthorized")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Svc.Profile(ctx, p.UserID)
	switch err {
	case nil:
	case service.ErrUserNotFound:
		return fail(c, http.StatusNotFound, "User not found")
	default:
		c.Logger().Errorf("profile fetch failed: %v", err)
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}

	return ok(c, http.StatusOK, "", profileResp{
		authUser:  toAuthUser(u),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	})
}

// Users: list accounts managed by the calling landlord, optionally filtered
// by ?role=.  The route carries RequireRole(LANDLORD); results are always
// scoped to the caller's own id so one landlord can never see another's
// agents or tenants.
func (h *AuthHandler) Users(c echo.Context) error {
	p, okP := middleware.Principal(c)
	if !okP {
		return fail(c, http.StatusUnauthorized, "Unauthorized")
	}

	var role model.Role
	if raw := strings.ToUpper(strings.TrimSpace(c.QueryParam("role"))); raw != "" {
		parsed, okRole := model.ParseRole(raw)
		if !okRole {
			return failValidation(c, []fieldError{{"role", "Role must be one of: LANDLORD, AGENT, TENANT"}})
		}
		role = parsed
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	users, err := h.Svc.UsersByRole(ctx, p, role)
	switch err {
	case nil:
	case service.ErrForbidden:
		return fail(c, http.StatusForbidden, "Only landlords can list users")
	default:
		c.Logger().Errorf("user listing failed: %v", err)
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}

	out := make([]authUser, 0, len(users))
	for _, u := range users {
		out = append(out, toAuthUser(u))
	}
	return ok(c, http.StatusOK, "", out)
}
