package service

import (
	"context"
	"database/sql"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/property-auth/internal/auth"
	"github.com/iliyamo/property-auth/internal/model"
	"github.com/iliyamo/property-auth/internal/repository"
)

// ----- fakes -----

type fakeUsers struct {
	users  map[uint64]model.User
	nextID uint64
	err    error // when set, every call fails with it
}

func newFakeUsers() *fakeUsers { return &fakeUsers{users: map[uint64]model.User{}} }

func (f *fakeUsers) Create(_ context.Context, u *model.User) (uint64, error) {
	if f.err != nil {
		return 0, f.err
	}
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return 0, repository.ErrEmailExists
		}
	}
	f.nextID++
	cp := *u
	cp.ID = f.nextID
	cp.CreatedAt = time.Now().UTC()
	cp.UpdatedAt = cp.CreatedAt
	f.users[cp.ID] = cp
	return cp.ID, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	if f.err != nil {
		return model.User{}, f.err
	}
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func (f *fakeUsers) GetByPhone(_ context.Context, phone string) (model.User, error) {
	for _, u := range f.users {
		if u.Phone != nil && *u.Phone == phone {
			return u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (f *fakeUsers) LandlordExists(_ context.Context, id uint64) (bool, error) {
	u, ok := f.users[id]
	return ok && u.Role == model.RoleLandlord, nil
}

func (f *fakeUsers) ListByLandlord(_ context.Context, landlordID uint64, role model.Role) ([]model.User, error) {
	var out []model.User
	for _, u := range f.users {
		if u.LandlordID == nil || *u.LandlordID != landlordID {
			continue
		}
		if role != "" && u.Role != role {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeBlacklist struct{ entries map[string]time.Time }

func newFakeBlacklist() *fakeBlacklist { return &fakeBlacklist{entries: map[string]time.Time{}} }

func (b *fakeBlacklist) Add(_ context.Context, token string, _ uint64, exp time.Time) error {
	b.entries[token] = exp
	return nil
}

func (b *fakeBlacklist) Contains(_ context.Context, token string) (bool, error) {
	exp, ok := b.entries[token]
	if !ok || time.Now().UTC().After(exp) {
		return false, nil
	}
	return true, nil
}

func newTestAuth() (*Auth, *fakeUsers, *auth.TokenService) {
	users := newFakeUsers()
	tokens := auth.NewTokenService("test-secret", 3600, newFakeBlacklist())
	return NewAuth(users, tokens, 4, nil), users, tokens
}

func landlordInput(email string) RegisterInput {
	return RegisterInput{
		FirstName: "Lana",
		LastName:  "Lord",
		Email:     email,
		Password:  "Aa1!aaaa",
		Role:      model.RoleLandlord,
	}
}

// ----- register -----

func TestRegister_Success(t *testing.T) {
	t.Parallel()

	svc, _, tokens := newTestAuth()
	u, tok, err := svc.Register(context.Background(), landlordInput("a@x.com"))
	require.NoError(t, err)
	require.NotZero(t, u.ID)
	require.Equal(t, "a@x.com", u.Email)
	require.True(t, u.IsActive)
	require.NotEqual(t, "Aa1!aaaa", u.PasswordHash)

	claims, err := tokens.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, u.ID, claims.UserID)
	require.Equal(t, model.RoleLandlord, claims.Role)
}

func TestRegister_NormalizesEmail(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuth()
	u, _, err := svc.Register(context.Background(), landlordInput("  A@X.com "))
	require.NoError(t, err)
	require.Equal(t, "a@x.com", u.Email)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuth()
	_, _, err := svc.Register(context.Background(), landlordInput("a@x.com"))
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), landlordInput("a@x.com"))
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_LandlordLinkage(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuth()
	landlord, _, err := svc.Register(context.Background(), landlordInput("a@x.com"))
	require.NoError(t, err)

	in := RegisterInput{
		FirstName:  "Tina",
		LastName:   "Tenant",
		Email:      "t@x.com",
		Password:   "Aa1!aaaa",
		Role:       model.RoleTenant,
		LandlordID: &landlord.ID,
	}
	u, tok, err := svc.Register(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, u.LandlordID)
	require.Equal(t, landlord.ID, *u.LandlordID)

	claims, err := svc.tokens.Verify(tok)
	require.NoError(t, err)
	require.NotNil(t, claims.LandlordID)
	require.Equal(t, landlord.ID, *claims.LandlordID)
}

func TestRegister_InvalidLandlord(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuth()
	missing := uint64(999)
	in := landlordInput("t@x.com")
	in.Role = model.RoleTenant
	in.LandlordID = &missing
	_, _, err := svc.Register(context.Background(), in)
	require.ErrorIs(t, err, ErrInvalidLandlord)
}

func TestRegister_LandlordIDMustBeLandlordRole(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuth()
	landlord, _, err := svc.Register(context.Background(), landlordInput("a@x.com"))
	require.NoError(t, err)

	tin := RegisterInput{
		FirstName: "Tina", LastName: "Tenant", Email: "t@x.com",
		Password: "Aa1!aaaa", Role: model.RoleTenant, LandlordID: &landlord.ID,
	}
	tenant, _, err := svc.Register(context.Background(), tin)
	require.NoError(t, err)

	// Linking to a tenant instead of a landlord must be rejected.
	ain := RegisterInput{
		FirstName: "Andy", LastName: "Agent", Email: "ag@x.com",
		Password: "Aa1!aaaa", Role: model.RoleAgent, LandlordID: &tenant.ID,
	}
	_, _, err = svc.Register(context.Background(), ain)
	require.ErrorIs(t, err, ErrInvalidLandlord)
}

// ----- login -----

func TestLogin_Success(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuth()
	reg, regTok, err := svc.Register(context.Background(), landlordInput("a@x.com"))
	require.NoError(t, err)

	u, tok, err := svc.Login(context.Background(), "a@x.com", "Aa1!aaaa")
	require.NoError(t, err)
	require.Equal(t, reg.ID, u.ID)
	require.NotEmpty(t, tok)
	require.NotEqual(t, regTok, tok) // distinct artifact, same subject
}

func TestLogin_EnumerationResistance(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuth()
	_, _, err := svc.Register(context.Background(), landlordInput("a@x.com"))
	require.NoError(t, err)

	_, _, wrongPw := svc.Login(context.Background(), "a@x.com", "Bb2!bbbb")
	_, _, noUser := svc.Login(context.Background(), "ghost@x.com", "Bb2!bbbb")

	// Unknown account and wrong password must be indistinguishable.
	require.ErrorIs(t, wrongPw, ErrInvalidCredentials)
	require.ErrorIs(t, noUser, ErrInvalidCredentials)
	require.Equal(t, wrongPw.Error(), noUser.Error())
}

func TestLogin_ByPhone(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuth()
	phone := "+15551234567"
	in := landlordInput("a@x.com")
	in.Phone = &phone
	_, _, err := svc.Register(context.Background(), in)
	require.NoError(t, err)

	u, _, err := svc.Login(context.Background(), "+15551234567", "Aa1!aaaa")
	require.NoError(t, err)
	require.Equal(t, "a@x.com", u.Email)
}

func TestLogin_Deactivated(t *testing.T) {
	t.Parallel()

	svc, users, _ := newTestAuth()
	reg, _, err := svc.Register(context.Background(), landlordInput("a@x.com"))
	require.NoError(t, err)

	u := users.users[reg.ID]
	u.IsActive = false
	users.users[reg.ID] = u

	// Correct password, deactivated account: the distinct error, not the
	// generic one.
	_, _, err = svc.Login(context.Background(), "a@x.com", "Aa1!aaaa")
	require.ErrorIs(t, err, ErrAccountDeactivated)
}

// ----- logout -----

func TestLogout_RevokesAndIsIdempotent(t *testing.T) {
	t.Parallel()

	svc, _, tokens := newTestAuth()
	u, tok, err := svc.Register(context.Background(), landlordInput("a@x.com"))
	require.NoError(t, err)

	ctx := context.Background()
	svc.Logout(ctx, tok, u.ID)

	revoked, err := tokens.IsRevoked(ctx, tok)
	require.NoError(t, err)
	require.True(t, revoked)

	// Second logout with the same token is harmless.
	svc.Logout(ctx, tok, u.ID)
	svc.Logout(ctx, "never-was-a-token", u.ID)
}

// ----- profile / listing -----

func TestProfile_NotFound(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuth()
	_, err := svc.Profile(context.Background(), 404)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUsersByRole_ScopedToCaller(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuth()
	ctx := context.Background()

	l1, _, err := svc.Register(ctx, landlordInput("l1@x.com"))
	require.NoError(t, err)
	l2, _, err := svc.Register(ctx, landlordInput("l2@x.com"))
	require.NoError(t, err)

	mk := func(email string, role model.Role, landlordID uint64) {
		_, _, err := svc.Register(ctx, RegisterInput{
			FirstName: "Uu", LastName: "Ser", Email: email,
			Password: "Aa1!aaaa", Role: role, LandlordID: &landlordID,
		})
		require.NoError(t, err)
	}
	mk("t1@x.com", model.RoleTenant, l1.ID)
	mk("t2@x.com", model.RoleTenant, l2.ID)
	mk("a1@x.com", model.RoleAgent, l1.ID)

	p := model.Principal{UserID: l1.ID, Role: model.RoleLandlord}
	tenants, err := svc.UsersByRole(ctx, p, model.RoleTenant)
	require.NoError(t, err)
	require.Len(t, tenants, 1)
	require.Equal(t, "t1@x.com", tenants[0].Email)

	all, err := svc.UsersByRole(ctx, p, "")
	require.NoError(t, err)
	require.Len(t, all, 2) // tenant + agent, never l2's people
}

func TestUsersByRole_NonLandlordForbidden(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuth()
	p := model.Principal{UserID: 9, Role: model.RoleAgent}
	_, err := svc.UsersByRole(context.Background(), p, model.RoleTenant)
	require.ErrorIs(t, err, ErrForbidden)
}
