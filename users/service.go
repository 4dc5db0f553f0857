package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/reviewboard-go/apperror"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint
// violations.
const pgUniqueViolation = "23505"

// User-facing messages for the expected account failures. These strings are
// part of the external contract.
const (
	MsgEmailInUse         = "Email already in use"
	MsgInvalidCredentials = "Either the email or password is invalid"
)

// AccountService is the call surface the handlers depend on.
type AccountService interface {
	SignUp(ctx context.Context, nu NewUser) (int, error)
	Login(ctx context.Context, email, password string) (int, error)
	GetUser(ctx context.Context, id int) (*Profile, error)
	UpdateUser(ctx context.Context, id int, update ProfileUpdate) error
}

// PostgresAccountService implements AccountService over a pgx pool.
type PostgresAccountService struct {
	db *pgxpool.Pool
}

// NewPostgresAccountService creates a PostgresAccountService.
func NewPostgresAccountService(db *pgxpool.Pool) *PostgresAccountService {
	return &PostgresAccountService{db: db}
}

// SignUp hashes the password and inserts the user, returning the new user's
// id. A duplicate email yields a ConflictError with the contract message.
func (s *PostgresAccountService) SignUp(ctx context.Context, nu NewUser) (int, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(nu.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	query := `INSERT INTO users (first_name, last_name, email, password, gender, city, state, age)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`
	var id int
	err = s.db.QueryRow(ctx, query,
		nu.FirstName, nu.LastName, strings.ToLower(nu.Email), string(hashed),
		nu.Gender, nu.City, nu.State, nu.Age,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && strings.Contains(pgErr.ConstraintName, "email") {
			return 0, apperror.NewConflictError(MsgEmailInUse, nil)
		}
		return 0, apperror.NewDatabaseError("failed to create user", err)
	}
	return id, nil
}

// Login verifies the credentials and returns the user's id. Unknown email
// and wrong password produce the same AuthError so callers cannot
// enumerate registered addresses.
func (s *PostgresAccountService) Login(ctx context.Context, email, password string) (int, error) {
	var id int
	var hashed string
	query := `SELECT id, password FROM users WHERE email = $1`
	err := s.db.QueryRow(ctx, query, strings.ToLower(email)).Scan(&id, &hashed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperror.NewAuthError(MsgInvalidCredentials, nil)
		}
		return 0, apperror.NewDatabaseError("failed to get user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)); err != nil {
		return 0, apperror.NewAuthError(MsgInvalidCredentials, nil)
	}
	return id, nil
}

// GetUser retrieves a user's profile by id.
func (s *PostgresAccountService) GetUser(ctx context.Context, id int) (*Profile, error) {
	var p Profile
	query := `SELECT id, first_name, last_name, email, gender, city, state, age, created_at
	          FROM users WHERE id = $1`
	err := s.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.Email,
		&p.Gender, &p.City, &p.State, &p.Age, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user with ID %d not found", id), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user profile", err)
	}
	return &p, nil
}

// UpdateUser applies only the fields present in update. The UPDATE clause
// is built dynamically from the non-nil fields; a present password is
// re-hashed before storage.
func (s *PostgresAccountService) UpdateUser(ctx context.Context, id int, update ProfileUpdate) error {
	var setClauses []string
	var args []any
	argID := 1

	add := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argID))
		args = append(args, value)
		argID++
	}

	if update.FirstName != nil {
		add("first_name", *update.FirstName)
	}
	if update.LastName != nil {
		add("last_name", *update.LastName)
	}
	if update.Email != nil {
		add("email", strings.ToLower(*update.Email))
	}
	if update.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*update.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		add("password", string(hashed))
	}
	if update.Gender != nil {
		add("gender", *update.Gender)
	}
	if update.City != nil {
		add("city", *update.City)
	}
	if update.State != nil {
		add("state", *update.State)
	}
	if update.Age != nil {
		add("age", *update.Age)
	}

	if len(setClauses) == 0 {
		return apperror.NewBadRequestError("Nothing to update.", nil)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(setClauses, ", "), argID)

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && strings.Contains(pgErr.ConstraintName, "email") {
			return apperror.NewConflictError(MsgEmailInUse, nil)
		}
		return apperror.NewDatabaseError("failed to update user profile", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("user with ID %d not found", id), nil)
	}
	return nil
}

var _ AccountService = (*PostgresAccountService)(nil)
