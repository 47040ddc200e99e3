package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"beauty-api/internal/analyzer"
	"beauty-api/internal/repository"
	"beauty-api/internal/storage"
)

// PhotoService sube la foto de perfil y la enlaza al perfil del usuario.
type PhotoService struct {
	logger   *zap.Logger
	store    storage.PhotoStore
	profiles repository.ProfileRepository
	maxBytes int64
	now      func() time.Time
	newID    func() string
}

func NewPhotoService(logger *zap.Logger, store storage.PhotoStore, profiles repository.ProfileRepository, maxBytes int64) *PhotoService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = storage.NewDisabledPhotoStore()
	}
	if maxBytes <= 0 {
		maxBytes = defaultMaxImageBytes
	}
	return &PhotoService{
		logger:   logger,
		store:    store,
		profiles: profiles,
		maxBytes: maxBytes,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
}

// MaxBytes es el tamaño máximo de la imagen decodificada.
func (s *PhotoService) MaxBytes() int64 { return s.maxBytes }

func (s *PhotoService) Upload(ctx context.Context, userID, dataURI string) (string, error) {
	d, err := analyzer.DecodeDataURI(dataURI)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if !d.IsImage() {
		return "", fmt.Errorf("%w: content type %q", ErrInvalidImage, d.MediaType)
	}
	if int64(len(d.Data)) > s.maxBytes {
		return "", ErrImageTooLarge
	}

	profile, err := s.profiles.GetByUserID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrProfileNotFound
	}
	if err != nil {
		return "", err
	}

	key := photoKey(userID, profile.Username, s.newID(), d.Extension())
	url, err := s.store.Put(ctx, key, d.Data, d.MediaType)
	if err != nil {
		return "", err
	}
	if err := s.profiles.UpdatePhoto(ctx, userID, url, s.now().UTC()); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrProfileNotFound
		}
		return "", err
	}
	s.logger.Info("profile photo updated", zap.String("user_id", userID), zap.String("key", key))
	return url, nil
}

func photoKey(userID, username, id, ext string) string {
	name := slug.Make(username)
	if name == "" {
		name = "photo"
	}
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("avatars/%s/%s-%s.%s", userID, name, id, ext)
}
