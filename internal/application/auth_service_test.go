package application

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quranapp/backend/internal/domain/entity"
	repo "github.com/quranapp/backend/internal/domain/repository"
	"github.com/quranapp/backend/pkg/helpers"
	"github.com/quranapp/backend/pkg/whatsapp"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User // by id
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entity.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ex := range r.users {
		if ex.Email == u.Email || ex.PhoneNumber == u.PhoneNumber {
			return repo.ErrDuplicate
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repo.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *fakeUserRepo) GetByEmailOrPhone(_ context.Context, email, phone string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email || u.PhoneNumber == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *fakeUserRepo) UpdatePicture(_ context.Context, id, pictureURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.PictureURL = pictureURL
	return nil
}

func (r *fakeUserRepo) SetStatusByPhone(_ context.Context, phone, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.PhoneNumber == phone {
			u.Status = status
			return nil
		}
	}
	return repo.ErrNotFound
}

type fakeOTPRepo struct {
	mu   sync.Mutex
	rows map[string]*entity.OTP // by phone
}

func newFakeOTPRepo() *fakeOTPRepo {
	return &fakeOTPRepo{rows: map[string]*entity.OTP{}}
}

func (r *fakeOTPRepo) Upsert(_ context.Context, otp *entity.OTP) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *otp
	r.rows[otp.PhoneNumber] = &cp
	return nil
}

func (r *fakeOTPRepo) Get(_ context.Context, phone, email string) (*entity.OTP, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.rows[phone]; ok && o.Email == email {
		cp := *o
		return &cp, nil
	}
	return nil, repo.ErrNotFound
}

func (r *fakeOTPRepo) GetByPhone(_ context.Context, phone string) (*entity.OTP, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.rows[phone]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, repo.ErrNotFound
}

func (r *fakeOTPRepo) DeleteMatching(_ context.Context, phone, email, code string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.rows[phone]
	if !ok || o.Email != email || o.Code != code || !o.ExpiresAt.After(now) {
		return false, nil
	}
	delete(r.rows, phone)
	return true, nil
}

type fakePublisher struct {
	mu   sync.Mutex
	jobs [][]byte
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs = append(p.jobs, b)
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.jobs)
}

func (p *fakePublisher) last(t *testing.T, out any) {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	require.NotEmpty(t, p.jobs)
	require.NoError(t, json.Unmarshal(p.jobs[len(p.jobs)-1], out))
}

type testEnv struct {
	svc   *Service
	users *fakeUserRepo
	otps  *fakeOTPRepo
	wa    *fakePublisher
	mail  *fakePublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	users := newFakeUserRepo()
	otps := newFakeOTPRepo()
	wa := &fakePublisher{}
	mail := &fakePublisher{}
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	svc := NewService(users, otps, nil, wa, mail, nil, nil, logger, 5*time.Minute)
	return &testEnv{svc: svc, users: users, otps: otps, wa: wa, mail: mail}
}

func registerInput() RegisterInput {
	return RegisterInput{
		Email:       "dina@example.com",
		PhoneNumber: "081234567890",
		Password:    "supersecret",
		DisplayName: "Dina",
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending user and dispatches otp", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.svc.Register(ctx, registerInput()))

		u, err := env.users.GetByEmail(ctx, "dina@example.com")
		require.NoError(t, err)
		assert.Equal(t, "6281234567890", u.PhoneNumber)
		assert.Equal(t, entity.StatusPendingVerification, u.Status)
		assert.NotEqual(t, "supersecret", u.PasswordHash)
		assert.True(t, helpers.CompareHashAndPassword(u.PasswordHash, "supersecret"))

		otp, err := env.otps.GetByPhone(ctx, "6281234567890")
		require.NoError(t, err)
		assert.Len(t, otp.Code, 6)
		assert.Equal(t, "dina@example.com", otp.Email)
		assert.WithinDuration(t, time.Now().Add(5*time.Minute), otp.ExpiresAt, 5*time.Second)

		var job whatsapp.Job
		env.wa.last(t, &job)
		assert.Equal(t, "6281234567890", job.Target)
		assert.Contains(t, job.Message, otp.Code)
	})

	t.Run("invalid phone", func(t *testing.T) {
		env := newTestEnv(t)
		in := registerInput()
		in.PhoneNumber = "+14155552671"
		assert.ErrorIs(t, env.svc.Register(ctx, in), ErrInvalidPhoneNumber)
		assert.Zero(t, env.wa.count())
	})

	t.Run("duplicate email", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.svc.Register(ctx, registerInput()))

		in := registerInput()
		in.PhoneNumber = "089999999999"
		assert.ErrorIs(t, env.svc.Register(ctx, in), ErrDuplicateAccount)
	})

	t.Run("duplicate phone in different format", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.svc.Register(ctx, registerInput()))

		in := registerInput()
		in.Email = "other@example.com"
		in.PhoneNumber = "+62 812-3456-7890"
		assert.ErrorIs(t, env.svc.Register(ctx, in), ErrDuplicateAccount)
	})

	t.Run("reissue overwrites the single otp record", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.svc.Register(ctx, registerInput()))
		first, err := env.otps.GetByPhone(ctx, "6281234567890")
		require.NoError(t, err)

		require.NoError(t, env.svc.ResendOTP(ctx, "081234567890"))
		second, err := env.otps.GetByPhone(ctx, "6281234567890")
		require.NoError(t, err)

		assert.Equal(t, first.Email, second.Email)
		assert.True(t, !second.ExpiresAt.Before(first.ExpiresAt))
		assert.Len(t, env.otps.rows, 1)
	})
}

func TestVerifyOTP(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*testEnv, *entity.OTP) {
		env := newTestEnv(t)
		require.NoError(t, env.svc.Register(ctx, registerInput()))
		otp, err := env.otps.GetByPhone(ctx, "6281234567890")
		require.NoError(t, err)
		return env, otp
	}

	t.Run("success consumes record and activates account", func(t *testing.T) {
		env, otp := setup(t)
		require.NoError(t, env.svc.VerifyOTP(ctx, "081234567890", otp.Email, otp.Code))

		_, err := env.otps.GetByPhone(ctx, "6281234567890")
		assert.ErrorIs(t, err, repo.ErrNotFound)

		u, err := env.users.GetByEmail(ctx, otp.Email)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusActive, u.Status)
		assert.Equal(t, 1, env.mail.count())
	})

	t.Run("second verify reports not found", func(t *testing.T) {
		env, otp := setup(t)
		require.NoError(t, env.svc.VerifyOTP(ctx, "081234567890", otp.Email, otp.Code))
		assert.ErrorIs(t, env.svc.VerifyOTP(ctx, "081234567890", otp.Email, otp.Code), ErrOTPNotFound)
	})

	t.Run("wrong code leaves record intact", func(t *testing.T) {
		env, otp := setup(t)
		wrong := "000000"
		if otp.Code == wrong {
			wrong = "000001"
		}
		assert.ErrorIs(t, env.svc.VerifyOTP(ctx, "081234567890", otp.Email, wrong), ErrOTPInvalidOrExpired)

		_, err := env.otps.GetByPhone(ctx, "6281234567890")
		assert.NoError(t, err)
	})

	t.Run("expired code", func(t *testing.T) {
		env, otp := setup(t)
		otp.ExpiresAt = time.Now().Add(-time.Second)
		require.NoError(t, env.otps.Upsert(ctx, otp))
		assert.ErrorIs(t, env.svc.VerifyOTP(ctx, "081234567890", otp.Email, otp.Code), ErrOTPInvalidOrExpired)
	})

	t.Run("email mismatch reports not found", func(t *testing.T) {
		env, otp := setup(t)
		assert.ErrorIs(t, env.svc.VerifyOTP(ctx, "081234567890", "someone@else.com", otp.Code), ErrOTPNotFound)
	})

	t.Run("invalid phone", func(t *testing.T) {
		env, _ := setup(t)
		assert.ErrorIs(t, env.svc.VerifyOTP(ctx, "12345", "dina@example.com", "123456"), ErrInvalidPhoneNumber)
	})
}

func TestResendOTP(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown phone", func(t *testing.T) {
		env := newTestEnv(t)
		assert.ErrorIs(t, env.svc.ResendOTP(ctx, "081234567890"), ErrOTPNotFound)
	})

	t.Run("refreshes code and dispatches again", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.svc.Register(ctx, registerInput()))
		sent := env.wa.count()

		require.NoError(t, env.svc.ResendOTP(ctx, "+62 812 3456 7890"))
		assert.Equal(t, sent+1, env.wa.count())

		otp, err := env.otps.GetByPhone(ctx, "6281234567890")
		require.NoError(t, err)

		var job whatsapp.Job
		env.wa.last(t, &job)
		assert.Contains(t, job.Message, otp.Code)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	require.NoError(t, env.svc.Register(ctx, registerInput()))

	t.Run("valid credentials", func(t *testing.T) {
		u, err := env.svc.Authenticate(ctx, "dina@example.com", "supersecret")
		require.NoError(t, err)
		assert.Equal(t, "dina@example.com", u.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := env.svc.Authenticate(ctx, "dina@example.com", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email yields the same error", func(t *testing.T) {
		_, err := env.svc.Authenticate(ctx, "ghost@example.com", "supersecret")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("login works before verification", func(t *testing.T) {
		u, err := env.svc.Authenticate(ctx, "dina@example.com", "supersecret")
		require.NoError(t, err)
		assert.Equal(t, entity.StatusPendingVerification, u.Status)
	})
}
