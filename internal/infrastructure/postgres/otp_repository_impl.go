package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quranapp/backend/internal/domain/entity"
	"github.com/quranapp/backend/internal/domain/repository"
)

type OTPRepository struct {
	pool *pgxpool.Pool
}

func NewOTPRepository(pool *pgxpool.Pool) *OTPRepository {
	return &OTPRepository{pool: pool}
}

// Upsert is a single conditional write so a reissue can never race a
// concurrent insert for the same phone number.
func (r *OTPRepository) Upsert(ctx context.Context, otp *entity.OTP) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO otps (phone_number, email, code, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (phone_number)
		DO UPDATE SET email = EXCLUDED.email, code = EXCLUDED.code, expires_at = EXCLUDED.expires_at
	`, otp.PhoneNumber, otp.Email, otp.Code, otp.ExpiresAt)
	return err
}

func (r *OTPRepository) Get(ctx context.Context, phone, email string) (*entity.OTP, error) {
	return r.getOne(ctx, `WHERE phone_number = $1 AND email = $2`, phone, email)
}

func (r *OTPRepository) GetByPhone(ctx context.Context, phone string) (*entity.OTP, error) {
	return r.getOne(ctx, `WHERE phone_number = $1`, phone)
}

func (r *OTPRepository) getOne(ctx context.Context, where string, args ...any) (*entity.OTP, error) {
	o := &entity.OTP{}
	row := r.pool.QueryRow(ctx, `
		SELECT phone_number, email, code, expires_at, created_at
		FROM otps
	`+where, args...)

	if err := row.Scan(&o.PhoneNumber, &o.Email, &o.Code, &o.ExpiresAt, &o.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

// DeleteMatching performs the verification commit: the row is deleted only
// when phone, email and code all match and expiry is still in the future.
// Two concurrent verifications can therefore never both succeed.
func (r *OTPRepository) DeleteMatching(ctx context.Context, phone, email, code string, now time.Time) (bool, error) {
	res, err := r.pool.Exec(ctx, `
		DELETE FROM otps
		WHERE phone_number = $1 AND email = $2 AND code = $3 AND expires_at > $4
	`, phone, email, code, now)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

var _ repository.OTPRepository = (*OTPRepository)(nil)
