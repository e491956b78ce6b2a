package profiles

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/careconnect/guardian-api/internal/blobstore"
	"github.com/careconnect/guardian-api/pkg/logging"
)

// Service manages guardian profiles and their photos.
type Service struct {
	store  Store
	photos blobstore.Store
	logger *logging.Logger
	// now is swappable in tests
	now func() time.Time
}

// NewService creates the profile service. photos may be nil when photo
// upload is not configured.
func NewService(store Store, photos blobstore.Store, logger *logging.Logger) *Service {
	if store == nil {
		panic("profiles: store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{store: store, photos: photos, logger: logger, now: time.Now}
}

// CreateInitial seeds the profile at signup. Name and email come from the
// signup form; everything else is completed later.
func (s *Service) CreateInitial(ctx context.Context, uid, name, email string) error {
	now := s.now().UTC()
	return s.store.Put(ctx, &UserProfile{
		UID:       uid,
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// CompleteRequest is the profile-completion form.
type CompleteRequest struct {
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	Phone        string       `json:"phone"`
	Relationship Relationship `json:"relationship"`
}

// Complete fills in the profile after signup. Creates the profile if the
// signup-time seed never landed.
func (s *Service) Complete(ctx context.Context, uid string, req *CompleteRequest) (*UserProfile, error) {
	if req.Relationship != "" && !req.Relationship.Valid() {
		return nil, ErrInvalidRelationship
	}

	now := s.now().UTC()
	p, err := s.store.Get(ctx, uid)
	if err == ErrProfileNotFound {
		p = &UserProfile{UID: uid, CreatedAt: now}
	} else if err != nil {
		return nil, err
	}

	if req.Name != "" {
		p.Name = strings.TrimSpace(req.Name)
	}
	if req.Email != "" {
		p.Email = req.Email
	}
	if req.Phone != "" {
		p.Phone = req.Phone
	}
	if req.Relationship != "" {
		p.Relationship = req.Relationship
	}
	p.UpdatedAt = now

	if err := s.store.Put(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns the guardian's profile.
func (s *Service) Get(ctx context.Context, uid string) (*UserProfile, error) {
	return s.store.Get(ctx, uid)
}

// Update applies a partial edit and bumps UpdatedAt. UID, email, and
// timestamps cannot be changed through this path.
func (s *Service) Update(ctx context.Context, uid string, upd Update) (*UserProfile, error) {
	if err := upd.Validate(); err != nil {
		return nil, err
	}

	p, err := s.store.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Phone != nil {
		p.Phone = *upd.Phone
	}
	if upd.Relationship != nil {
		p.Relationship = *upd.Relationship
	}
	p.UpdatedAt = s.now().UTC()

	if err := s.store.Put(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SetPhoto uploads a new profile photo, records its URL, and removes the
// previous photo if there was one. The old-photo delete is best effort.
func (s *Service) SetPhoto(ctx context.Context, uid string, data []byte, contentType string) (*UserProfile, error) {
	if s.photos == nil {
		return nil, fmt.Errorf("profiles: photo storage not configured")
	}

	p, err := s.store.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("profile-pictures/%s/%d.%s", uid, s.now().UnixMilli(), extensionFor(contentType))
	url, err := s.photos.Upload(ctx, key, data, contentType)
	if err != nil {
		return nil, err
	}

	previous := p.PhotoURL
	p.PhotoURL = url
	p.UpdatedAt = s.now().UTC()
	if err := s.store.Put(ctx, p); err != nil {
		return nil, err
	}

	if previous != "" && previous != url {
		if err := s.photos.Delete(ctx, previous); err != nil {
			s.logger.Warn("failed to delete previous profile photo", "uid", uid, "url", previous, "error", err)
		}
	}
	return p, nil
}

func extensionFor(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	default:
		return "jpg"
	}
}
