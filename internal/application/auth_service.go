package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/quranapp/backend/internal/domain/entity"
	repo "github.com/quranapp/backend/internal/domain/repository"
	"github.com/quranapp/backend/internal/infrastructure/storage"
	"github.com/quranapp/backend/pkg/helpers"
	"github.com/quranapp/backend/pkg/mailer"
	"github.com/quranapp/backend/pkg/whatsapp"
)

var (
	ErrInvalidPhoneNumber  = errors.New("invalid phone number")
	ErrDuplicateAccount    = errors.New("email or phone number already registered")
	ErrOTPNotFound         = errors.New("otp not found")
	ErrOTPInvalidOrExpired = errors.New("otp invalid or expired")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserNotFound        = errors.New("user not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

// JobPublisher enqueues a JSON job for a background worker.
// *helpers.RabbitPublisher satisfies it.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Service orchestrates registration, the OTP lifecycle, login and profile
// updates. Delivery of OTP messages and welcome emails is decoupled from the
// request path: jobs are published to RabbitMQ and publish failures are
// logged, never rolled back into the HTTP result.
type Service struct {
	Users   repo.UserRepository
	OTPs    repo.OTPRepository
	Storage storage.ProfileStorage
	WA      JobPublisher // WhatsApp OTP delivery queue
	Mail    JobPublisher // welcome email queue
	JWT     *helpers.JWTManager
	Redis   *redis.Client
	Logger  *logrus.Logger
	OTPTTL  time.Duration
}

func NewService(users repo.UserRepository, otps repo.OTPRepository, st storage.ProfileStorage, wa, mail JobPublisher, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger, otpTTL time.Duration) *Service {
	if otpTTL <= 0 {
		otpTTL = 5 * time.Minute
	}
	return &Service{
		Users:   users,
		OTPs:    otps,
		Storage: st,
		WA:      wa,
		Mail:    mail,
		JWT:     jwt,
		Redis:   rdb,
		Logger:  logger,
		OTPTTL:  otpTTL,
	}
}

type RegisterInput struct {
	Email       string
	PhoneNumber string
	Password    string
	DisplayName string
}

// Register normalizes the phone number, rejects duplicate accounts, issues a
// fresh OTP and creates the (still unverified) user row, then dispatches the
// code for WhatsApp delivery. The duplicate pre-check is advisory; the unique
// constraints on email and phone_number are the authoritative guard, so a
// constraint violation at insert time is reported as a duplicate as well.
func (s *Service) Register(ctx context.Context, in RegisterInput) error {
	phone, err := helpers.FormatPhoneNumber(in.PhoneNumber)
	if err != nil {
		return ErrInvalidPhoneNumber
	}

	existing, err := s.Users.GetByEmailOrPhone(ctx, in.Email, phone)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("duplicate check: %w", err)
	}
	if existing != nil {
		return ErrDuplicateAccount
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	code, expiresAt, err := s.issueOTP(ctx, phone, in.Email)
	if err != nil {
		return err
	}

	user := &entity.User{
		Email:        in.Email,
		PhoneNumber:  phone,
		PasswordHash: hash,
		Name:         in.DisplayName,
		Status:       entity.StatusPendingVerification,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return ErrDuplicateAccount
		}
		return fmt.Errorf("create user: %w", err)
	}

	s.dispatchOTP(ctx, phone, code, expiresAt)
	return nil
}

// VerifyOTP consumes the pending code for (phone, email). The conditional
// delete is the commit point: exactly one caller can succeed, after which the
// record is gone and later attempts observe not-found. On success the account
// is activated and a welcome email is queued, both best-effort.
func (s *Service) VerifyOTP(ctx context.Context, phoneNumber, email, code string) error {
	phone, err := helpers.FormatPhoneNumber(phoneNumber)
	if err != nil {
		return ErrInvalidPhoneNumber
	}

	deleted, err := s.OTPs.DeleteMatching(ctx, phone, email, code, time.Now())
	if err != nil {
		return fmt.Errorf("verify otp: %w", err)
	}
	if !deleted {
		if _, err := s.OTPs.Get(ctx, phone, email); errors.Is(err, repo.ErrNotFound) {
			return ErrOTPNotFound
		} else if err != nil {
			return fmt.Errorf("verify otp: %w", err)
		}
		return ErrOTPInvalidOrExpired
	}

	if err := s.Users.SetStatusByPhone(ctx, phone, entity.StatusActive); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("phone", phone).Warn("activate account failed")
	}
	if s.Mail != nil {
		job := mailer.EmailJob{
			To:      email,
			Subject: "Welcome! Your phone number is verified",
			Text:    "Your registration is complete. You can now sign in with your email and password.",
		}
		if err := s.Mail.PublishJSON(ctx, job); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("email", email).Warn("failed to publish welcome email job")
		}
	}
	return nil
}

// ResendOTP regenerates the code and expiry for an existing pending
// registration and dispatches it again. The stored email is preserved.
func (s *Service) ResendOTP(ctx context.Context, phoneNumber string) error {
	phone, err := helpers.FormatPhoneNumber(phoneNumber)
	if err != nil {
		return ErrInvalidPhoneNumber
	}

	rec, err := s.OTPs.GetByPhone(ctx, phone)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrOTPNotFound
	} else if err != nil {
		return fmt.Errorf("resend otp: %w", err)
	}

	code, expiresAt, err := s.issueOTP(ctx, phone, rec.Email)
	if err != nil {
		return err
	}
	s.dispatchOTP(ctx, phone, code, expiresAt)
	return nil
}

// issueOTP writes (or overwrites) the pending record for the phone number in
// a single upsert, replacing code, email and expiry in place.
func (s *Service) issueOTP(ctx context.Context, phone, email string) (string, time.Time, error) {
	code, err := helpers.GenOTPCode()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate otp: %w", err)
	}
	expiresAt := time.Now().Add(s.OTPTTL)
	otp := &entity.OTP{
		PhoneNumber: phone,
		Email:       email,
		Code:        code,
		ExpiresAt:   expiresAt,
	}
	if err := s.OTPs.Upsert(ctx, otp); err != nil {
		return "", time.Time{}, fmt.Errorf("store otp: %w", err)
	}
	return code, expiresAt, nil
}

// dispatchOTP queues the code for WhatsApp delivery. A failed publish leaves
// the OTP record valid but undelivered; the caller's recourse is resend.
func (s *Service) dispatchOTP(ctx context.Context, phone, code string, expiresAt time.Time) {
	if s.WA == nil {
		if s.Logger != nil {
			s.Logger.WithField("phone", phone).Warn("whatsapp queue not configured, otp not dispatched")
		}
		return
	}
	job := whatsapp.Job{
		Target:  phone,
		Message: fmt.Sprintf("Kode OTP Anda adalah: %s. Berlaku sampai %s.", code, expiresAt.Format("15:04")),
	}
	if err := s.WA.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("phone", phone).Error("failed to publish otp delivery job")
	}
}

// Authenticate validates email/password. A single error covers both unknown
// email and wrong password so the endpoint cannot be used for enumeration.
// Verification state is deliberately not consulted here.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

func sessionKey(userID string) string {
	return "user:session:" + userID
}

// IssueTokens generates an access/refresh pair and records a session in Redis.
func (s *Service) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID)
	if err != nil {
		return TokenPair{}, err
	}

	if s.Redis != nil {
		key := sessionKey(u.ID)
		fields := map[string]any{
			"user_id":    u.ID,
			"email":      u.Email,
			"name":       u.Name,
			"phone":      u.PhoneNumber,
			"created_at": time.Now().UTC().Format(time.RFC3339Nano),
		}
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, 24*time.Hour)
		if _, rErr := pipe.Exec(ctx); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// GetProfile returns the account for the given id.
func (s *Service) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}
