package repository

import (
	"context"
	"time"

	"github.com/quranapp/backend/internal/domain/entity"
)

// OTPRepository persists the single pending OTP record per phone number.
type OTPRepository interface {
	// Upsert writes the record, overwriting code, email and expiry when a
	// row for the phone number already exists.
	Upsert(ctx context.Context, otp *entity.OTP) error
	Get(ctx context.Context, phone, email string) (*entity.OTP, error)
	GetByPhone(ctx context.Context, phone string) (*entity.OTP, error)
	// DeleteMatching deletes the record only if phone, email and code all
	// match and the record has not expired at now. Reports whether a row
	// was deleted; the conditional delete is what makes verification
	// single-use under concurrency.
	DeleteMatching(ctx context.Context, phone, email, code string, now time.Time) (bool, error)
}
