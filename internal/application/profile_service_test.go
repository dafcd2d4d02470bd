package application

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quranapp/backend/internal/domain/entity"
)

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string]string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string]string{}}
}

func (s *fakeStorage) Save(_ context.Context, object, _ string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[object] = string(b)
	return "static/profile_pictures/" + object, nil
}

func newProfileEnv(t *testing.T) (*Service, *fakeUserRepo, *fakeStorage) {
	t.Helper()
	users := newFakeUserRepo()
	st := newFakeStorage()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	svc := NewService(users, newFakeOTPRepo(), st, nil, nil, nil, nil, logger, 5*time.Minute)
	return svc, users, st
}

func TestUpdateProfilePicture(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, users *fakeUserRepo) *entity.User {
		t.Helper()
		u := &entity.User{
			Email:        "dina@example.com",
			PhoneNumber:  "6281234567890",
			PasswordHash: "x",
			Name:         "Dina",
			Status:       entity.StatusActive,
		}
		require.NoError(t, users.Create(ctx, u))
		return u
	}

	t.Run("stores under user-prefixed name and records ref", func(t *testing.T) {
		svc, users, st := newProfileEnv(t)
		u := seed(t, users)

		ref, err := svc.UpdateProfilePicture(ctx, u.ID, "photo.png", "image/png", strings.NewReader("pngdata"))
		require.NoError(t, err)

		object := fmt.Sprintf("%s_photo.png", u.ID)
		assert.Equal(t, "static/profile_pictures/"+object, ref)
		assert.Equal(t, "pngdata", st.objects[object])

		got, err := users.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, ref, got.PictureURL)
	})

	t.Run("extension check is case-insensitive", func(t *testing.T) {
		svc, users, _ := newProfileEnv(t)
		u := seed(t, users)

		_, err := svc.UpdateProfilePicture(ctx, u.ID, "selfie.JPG", "image/jpeg", strings.NewReader("jpgdata"))
		assert.NoError(t, err)
	})

	t.Run("rejects unsupported extension", func(t *testing.T) {
		svc, users, st := newProfileEnv(t)
		u := seed(t, users)

		_, err := svc.UpdateProfilePicture(ctx, u.ID, "anim.gif", "image/gif", strings.NewReader("gifdata"))
		assert.ErrorIs(t, err, ErrUnsupportedFileType)
		assert.Empty(t, st.objects)
	})

	t.Run("rejects extensionless filename", func(t *testing.T) {
		svc, users, _ := newProfileEnv(t)
		u := seed(t, users)

		_, err := svc.UpdateProfilePicture(ctx, u.ID, "photo", "image/png", strings.NewReader("data"))
		assert.ErrorIs(t, err, ErrUnsupportedFileType)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, _, _ := newProfileEnv(t)
		_, err := svc.UpdateProfilePicture(ctx, "missing-id", "photo.png", "image/png", strings.NewReader("data"))
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("path components are stripped from the filename", func(t *testing.T) {
		svc, users, st := newProfileEnv(t)
		u := seed(t, users)

		_, err := svc.UpdateProfilePicture(ctx, u.ID, "../../etc/passwd.png", "image/png", strings.NewReader("data"))
		require.NoError(t, err)
		assert.Contains(t, st.objects, fmt.Sprintf("%s_passwd.png", u.ID))
	})
}
