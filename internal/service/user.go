package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"testlab/internal/gravatar"
	"testlab/internal/model"
	"testlab/internal/repository"
	"testlab/internal/storage"
)

var (
	ErrIDRequired   = errors.New("id is required")
	ErrNotFound     = errors.New("user not found")
	ErrNameRequired = errors.New("name is required")
	ErrInvalidAge   = errors.New("age must be between 1 and 149")
	ErrReaderNil    = errors.New("reader is nil")
	ErrNoAvatar     = errors.New("user has no avatar")
)

// avatarURLTTL is the lifetime of presigned download links for stored avatars.
const avatarURLTTL = 15 * time.Minute

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// UserListResult is the service-level DTO for paginated users.
type UserListResult struct {
	Items []model.User `json:"data"`
	Total int          `json:"total"`
}

// RegisterInput carries the fields a caller provides when registering a user.
type RegisterInput struct {
	Name  string `json:"name"`
	Age   int    `json:"age"`
	Email string `json:"email"`
}

// UserService defines the use cases for handling users.
type UserService interface {
	// Register validates the input, probes Gravatar for an existing avatar
	// (best effort), and persists the user.
	Register(ctx context.Context, in RegisterInput) (*model.User, error)

	// Get returns a single user by its ID.
	Get(ctx context.Context, id string) (*model.User, error)

	// List returns users using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*UserListResult, error)

	// Delete removes a user by ID, including any stored avatar object.
	Delete(ctx context.Context, id string) error

	// UploadAvatar stores the avatar content in object storage, records the
	// object key on the user, and rolls back storage if the DB update fails.
	UploadAvatar(ctx context.Context, id string, r io.Reader, contentType string, size int64) (*model.User, error)

	// AvatarURL resolves a user's avatar to a downloadable URL: a presigned
	// storage link for uploaded files, the public Gravatar URL for
	// gravatar references. Returns ErrNoAvatar when the user has neither.
	AvatarURL(ctx context.Context, id string) (string, error)
}

// userService is a concrete implementation of UserService.
type userService struct {
	repo     repository.UserRepository
	store    storage.Storage
	avatars  gravatar.Checker
}

// NewUserService constructs a new UserService.
func NewUserService(repo repository.UserRepository, store storage.Storage, avatars gravatar.Checker) UserService {
	return &userService{repo: repo, store: store, avatars: avatars}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if in.Name == "" {
		return nil, ErrNameRequired
	}
	if in.Age <= 0 || in.Age >= 150 {
		return nil, ErrInvalidAge
	}

	u := &model.User{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Age:       in.Age,
		Email:     in.Email,
		CreatedAt: time.Now().UTC(),
	}

	// Best-effort probe: a Gravatar outage must not block registration.
	if in.Email != "" && s.avatars != nil {
		if has, err := s.avatars.Has(ctx, in.Email); err == nil && has {
			u.AvatarPath = fmt.Sprintf("gravatar:%s", gravatar.EmailHash(in.Email))
		}
	}

	stored, err := s.repo.Create(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// List returns paginated users without exposing repository types.
func (s *userService) List(ctx context.Context, limit, offset int) (*UserListResult, error) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &UserListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *userService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	// Gravatar references are remote; only objects we stored get removed.
	if key := storedAvatarKey(u.AvatarPath); key != "" {
		if err := s.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete avatar object: %w", err)
		}
	}

	return s.repo.Delete(ctx, id)
}

func (s *userService) UploadAvatar(ctx context.Context, id string, r io.Reader, contentType string, size int64) (*model.User, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	if r == nil {
		return nil, ErrReaderNil
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	ext := extensionFor(contentType)
	key := filepath.ToSlash(filepath.Join("avatars", uuid.New().String()+ext))

	if _, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"user-id": id,
		},
	}); err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	if err := s.repo.UpdateAvatarPath(ctx, id, key); err != nil {
		// Rollback: delete the object we just stored.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	// Previous stored avatar is replaced, not accumulated.
	if old := storedAvatarKey(u.AvatarPath); old != "" && old != key {
		_ = s.store.Delete(ctx, old)
	}

	u.AvatarPath = key
	return u, nil
}

func (s *userService) AvatarURL(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", ErrIDRequired
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}

	if u.AvatarPath == "" {
		return "", ErrNoAvatar
	}
	if hash, ok := strings.CutPrefix(u.AvatarPath, "gravatar:"); ok {
		return gravatar.ImageURL(hash), nil
	}

	url, err := s.store.PresignGet(ctx, u.AvatarPath, avatarURLTTL)
	if err != nil {
		return "", fmt.Errorf("presign avatar: %w", err)
	}
	return url, nil
}

// storedAvatarKey returns the object key if the avatar lives in our storage,
// or "" for empty/remote (gravatar:) references.
func storedAvatarKey(avatarPath string) string {
	if avatarPath == "" || strings.HasPrefix(avatarPath, "gravatar:") {
		return ""
	}
	return avatarPath
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
