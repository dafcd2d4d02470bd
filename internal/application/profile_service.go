package application

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// allowedPictureExts is the extension allow-list for profile pictures.
// Validation is by filename extension only, matching the public contract.
var allowedPictureExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// UpdateProfilePicture stores the uploaded image under a deterministic
// object name derived from the user id and original filename, then records
// the resulting reference on the account.
func (s *Service) UpdateProfilePicture(ctx context.Context, userID, filename, contentType string, r io.Reader) (string, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil || u == nil {
		return "", ErrUserNotFound
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedPictureExts[ext] {
		return "", ErrUnsupportedFileType
	}

	object := fmt.Sprintf("%s_%s", userID, filepath.Base(filename))
	ref, err := s.Storage.Save(ctx, object, contentType, r)
	if err != nil {
		return "", fmt.Errorf("store picture: %w", err)
	}

	if err := s.Users.UpdatePicture(ctx, userID, ref); err != nil {
		return "", fmt.Errorf("update picture: %w", err)
	}
	return ref, nil
}
