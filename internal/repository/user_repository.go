package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/property-auth/internal/model"
)

// ErrEmailExists signals a violation of the unique email key.  The database
// enforces uniqueness, so a racing duplicate registration loses here and
// the handler can translate it into a conflict response.
var ErrEmailExists = errors.New("email already exists")

const userColumns = "id,first_name,last_name,email,phone,password_hash,role,is_active,landlord_id,created_at,updated_at"

// UserRepo provides access to the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user and returns its ID.  The caller supplies an
// already-hashed password; plaintext never reaches this layer.
func (r *UserRepo) Create(ctx context.Context, u *model.User) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (first_name,last_name,email,phone,password_hash,role,landlord_id) VALUES (?,?,?,?,?,?,?)",
		u.FirstName, u.LastName, strings.ToLower(strings.TrimSpace(u.Email)),
		nullStr(u.Phone), u.PasswordHash, string(u.Role), nullID(u.LandlordID))
	if err != nil {
		// MySQL error 1062: duplicate entry for a unique key.  Email is the
		// only unique key writable through this insert.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
}

// GetByPhone fetches a user by phone number.  Phone is not unique in the
// schema; the first match wins, mirroring lookup-by-identifier login.
func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE phone=? LIMIT 1", phone)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

// LandlordExists reports whether a user with the given id exists and holds
// the LANDLORD role.  Used to validate landlord linkage at registration.
func (r *UserRepo) LandlordExists(ctx context.Context, id uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM users WHERE id=? AND role=? LIMIT 1", id, string(model.RoleLandlord)).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListByLandlord returns the users managed by the given landlord, optionally
// filtered by role.  Password hashes are scanned but stripped by the service
// projection before leaving the process.
func (r *UserRepo) ListByLandlord(ctx context.Context, landlordID uint64, role model.Role) ([]model.User, error) {
	q := "SELECT " + userColumns + " FROM users WHERE landlord_id=?"
	args := []interface{}{landlordID}
	if role != "" {
		q += " AND role=?"
		args = append(args, string(role))
	}
	q += " ORDER BY id"

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface{ Scan(dest ...interface{}) error }

func (r *UserRepo) getOne(ctx context.Context, query string, arg interface{}) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx, query, arg))
}

func scanUser(s rowScanner) (model.User, error) {
	var (
		u        model.User
		phone    sql.NullString
		landlord sql.NullInt64
		role     string
	)
	err := s.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &phone, &u.PasswordHash,
		&role, &u.IsActive, &landlord, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.Role = model.Role(role)
	if phone.Valid {
		u.Phone = &phone.String
	}
	if landlord.Valid {
		v := uint64(landlord.Int64)
		u.LandlordID = &v
	}
	return u, nil
}

func nullStr(s *string) interface{} {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func nullID(id *uint64) interface{} {
	if id == nil {
		return nil
	}
	return *id
}
