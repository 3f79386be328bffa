package user

import (
	"context"
	"errors"
	"time"

	c "authd/internal/core/domain/common"
	e "authd/internal/core/domain/errors"
	"authd/internal/core/domain/user"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
)

const PG_UNIQUE_CONSTRAINT_ERR_CODE = "23505"
const EMAIL_CONSTRAINT_NAME = "user_email_idx"

const userColumns = `id, email, password_hash, password_reset_token_hash, password_reset_expires_at, created_at`

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so the repository
// works standalone and inside a unit of work.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type PgxUserRepository struct {
	db DBTX
}

func NewPgxRepository(db DBTX) *PgxUserRepository {
	if db == nil {
		panic(e.NewNilArgumentError("db"))
	}
	return &PgxUserRepository{db: db}
}

func (r *PgxUserRepository) Create(ctx context.Context, input user.CreateUserInput) (u user.User, err error) {
	row := r.db.QueryRow(
		ctx,
		`INSERT INTO "user" (email, password_hash, created_at)
		 VALUES ($1, $2, $3)
		 RETURNING `+userColumns,
		string(input.Email),
		string(input.PasswordHash),
		input.CreatedAt,
	)
	u, err = scanUser(row)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == PG_UNIQUE_CONSTRAINT_ERR_CODE && pgErr.ConstraintName == EMAIL_CONSTRAINT_NAME {
			return u, user.ErrEmailAlreadyExists
		}
	}
	if err != nil {
		return u, err
	}
	return u, u.Validate()
}

func (r *PgxUserRepository) GetByID(ctx context.Context, id user.ID) (u user.User, err error) {
	row := r.db.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM "user" WHERE id = $1`,
		int64(id),
	)
	u, err = scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return u, user.ErrUserDoesNotExist
	}
	if err != nil {
		return u, err
	}
	return u, u.Validate()
}

func (r *PgxUserRepository) GetByEmail(ctx context.Context, email c.Email) (u user.User, err error) {
	row := r.db.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM "user" WHERE email = $1`,
		string(email),
	)
	u, err = scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return u, user.ErrUserDoesNotExist
	}
	if err != nil {
		return u, err
	}
	return u, u.Validate()
}

func (r *PgxUserRepository) SetPasswordResetToken(
	ctx context.Context,
	input user.SetPasswordResetTokenInput,
) error {
	tag, err := r.db.Exec(
		ctx,
		`UPDATE "user"
		 SET password_reset_token_hash = $2, password_reset_expires_at = $3
		 WHERE id = $1`,
		int64(input.UserID),
		string(input.TokenHash),
		input.ExpiresAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserDoesNotExist
	}
	return nil
}

func (r *PgxUserRepository) GetByValidResetToken(
	ctx context.Context,
	tokenHash user.PasswordResetTokenHash,
	now time.Time,
) (u user.User, err error) {
	row := r.db.QueryRow(
		ctx,
		`SELECT `+userColumns+`
		 FROM "user"
		 WHERE password_reset_token_hash = $1 AND password_reset_expires_at > $2`,
		string(tokenHash),
		now,
	)
	u, err = scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return u, user.ErrInvalidPasswordResetToken
	}
	if err != nil {
		return u, err
	}
	return u, u.Validate()
}

func (r *PgxUserRepository) ResetPassword(
	ctx context.Context,
	input user.ResetPasswordInput,
) (u user.User, err error) {
	// Conditioned on the token still matching and being unexpired, so a
	// concurrent consume or a newer token makes this a no-op, and password
	// swap plus token clearing are one atomic write.
	row := r.db.QueryRow(
		ctx,
		`UPDATE "user"
		 SET password_hash = $2, password_reset_token_hash = NULL, password_reset_expires_at = NULL
		 WHERE password_reset_token_hash = $1 AND password_reset_expires_at > $3
		 RETURNING `+userColumns,
		string(input.TokenHash),
		string(input.NewPasswordHash),
		input.At,
	)
	u, err = scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return u, user.ErrInvalidPasswordResetToken
	}
	if err != nil {
		return u, err
	}
	return u, u.Validate()
}

func scanUser(row pgx.Row) (u user.User, err error) {
	var (
		id             int64
		email          string
		passwordHash   string
		resetTokenHash pgtype.Text
		resetExpiresAt pgtype.Timestamptz
		createdAt      time.Time
	)
	err = row.Scan(&id, &email, &passwordHash, &resetTokenHash, &resetExpiresAt, &createdAt)
	if err != nil {
		return u, err
	}
	return user.User{
		ID:           user.ID(id),
		Email:        c.Email(email),
		PasswordHash: user.PasswordHash(passwordHash),
		CreatedAt:    createdAt,
		PasswordResetTokenHash: c.NewOptional(
			user.PasswordResetTokenHash(resetTokenHash.String),
			resetTokenHash.Status == pgtype.Present,
		),
		PasswordResetExpiresAt: c.NewOptional(
			resetExpiresAt.Time,
			resetExpiresAt.Status == pgtype.Present,
		),
	}, nil
}
