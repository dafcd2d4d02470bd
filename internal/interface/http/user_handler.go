package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/quranapp/backend/internal/application"
	"github.com/quranapp/backend/pkg/response"
)

type UserHandler struct {
	Svc    *application.Service
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.Service, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

// UpdateProfilePicture POST /update-profile-picture (multipart: userId, file)
func (h *UserHandler) UpdateProfilePicture(c *gin.Context) {
	userID := c.PostForm("userId")
	if userID == "" {
		response.Error[any](c, http.StatusBadRequest, "userId is required", nil)
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "file is required", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "cannot read uploaded file", nil)
		return
	}
	defer func() { _ = f.Close() }()

	ref, err := h.Svc.UpdateProfilePicture(c.Request.Context(), userID, fh.Filename, fh.Header.Get("Content-Type"), f)
	switch {
	case err == nil:
		response.Success(c, http.StatusOK, gin.H{"pictureRef": ref}, "profile picture updated", nil)
	case errors.Is(err, application.ErrUserNotFound):
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
	case errors.Is(err, application.ErrUnsupportedFileType):
		response.Error[any](c, http.StatusBadRequest, "file must be an image (jpg, jpeg, png)", nil)
	default:
		h.Logger.WithError(err).Error("update profile picture failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to update profile picture", nil)
	}
}

// GetProfile GET /profile (cookie auth)
func (h *UserHandler) GetProfile(c *gin.Context) {
	uid := c.GetString("userID")
	u, err := h.Svc.GetProfile(c.Request.Context(), uid)
	if err != nil {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"id":          u.ID,
		"email":       u.Email,
		"displayName": u.Name,
		"phoneNumber": u.PhoneNumber,
		"pictureRef":  u.PictureURL,
		"status":      u.Status,
		"created_at":  u.CreatedAt,
		"updated_at":  u.UpdatedAt,
	}, "profile", nil)
}
