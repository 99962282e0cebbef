package services

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/taskforge/taskforge-backend/internal/models"
	"github.com/taskforge/taskforge-backend/internal/repository"
)

const (
	// MaxAvatarBytes is the upload size ceiling, checked before any decode.
	MaxAvatarBytes = 1000000
	// AvatarSize is the canonical square dimension of stored avatars.
	AvatarSize = 250
)

// AvatarService normalizes uploaded images and stores the result on the user
// document. Stored avatars are always a 250x250 PNG, never the raw upload.
type AvatarService struct {
	users repository.UserRepository
}

func NewAvatarService(users repository.UserRepository) *AvatarService {
	return &AvatarService{users: users}
}

// Process validates and normalizes raw uploaded bytes. Size and extension
// rejections happen before decoding; a decode failure after the extension
// check is a processing error, not a client rejection.
func (s *AvatarService) Process(raw []byte, filename string) ([]byte, error) {
	if len(raw) > MaxAvatarBytes {
		return nil, ErrAvatarTooLarge
	}
	if !allowedImageExt(filename) {
		return nil, ErrUnsupportedImage
	}

	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageProcessing, err)
	}

	thumb := imaging.Fill(img, AvatarSize, AvatarSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.PNG); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageProcessing, err)
	}
	return buf.Bytes(), nil
}

// Set runs the pipeline and persists the normalized bytes on the user.
func (s *AvatarService) Set(ctx context.Context, user *models.User, raw []byte, filename string) error {
	normalized, err := s.Process(raw, filename)
	if err != nil {
		return err
	}
	if err := s.users.SetAvatar(ctx, user.ID, normalized); err != nil {
		return fmt.Errorf("store avatar: %w", err)
	}
	user.Avatar = normalized
	return nil
}

// Clear removes the avatar field. No pipeline involved.
func (s *AvatarService) Clear(ctx context.Context, user *models.User) error {
	if err := s.users.UnsetAvatar(ctx, user.ID); err != nil {
		return fmt.Errorf("clear avatar: %w", err)
	}
	user.Avatar = nil
	return nil
}

func allowedImageExt(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}
