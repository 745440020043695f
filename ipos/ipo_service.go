package ipos

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/ipo-auth-server/storage"
)

// LogoUpload is an image received with a registration form.
type LogoUpload struct {
	Data        []byte
	ContentType string
}

// Service runs the listing operations against the document repo and keeps
// logo objects in step with it.
type Service struct {
	repo    Repo
	store   storage.ObjectStore
	nowTime func() time.Time
}

type ServiceOption func(*Service)

func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

func NewService(repo Repo, store storage.ObjectStore, options ...ServiceOption) (*Service, error) {
	if repo == nil {
		return nil, errors.New("[NewService] ipo repo is required")
	}
	if store == nil {
		return nil, errors.New("[NewService] object store is required")
	}
	s := &Service{repo: repo, store: store, nowTime: time.Now}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

func (s *Service) List(ctx context.Context) ([]*IPO, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Service.List]")
	}
	if len(list) == 0 {
		return nil, NoIPOsErr
	}
	return list, nil
}

// Register stores the logo first so a listing never references missing bytes.
// The object is removed again if the insert fails.
func (s *Service) Register(ctx context.Context, ipo *IPO, logo *LogoUpload) (*IPO, error) {
	if err := ipo.Validate(); err != nil {
		return nil, err
	}

	if logo != nil {
		ref, err := s.putLogo(ctx, logo)
		if err != nil {
			return nil, err
		}
		ipo.CompanyLogo = ref
	}

	if err := s.repo.Create(ctx, ipo); err != nil {
		if ipo.HasLogo() {
			s.dropLogo(ctx, ipo.CompanyLogo.Key)
			ipo.CompanyLogo = nil
		}
		return nil, pkgerrors.Wrap(err, "[Service.Register]")
	}
	log.Info().Str("ipo", ipo.ID).Str("company", ipo.CompanyName).Msg("ipo registered")
	return ipo, nil
}

func (s *Service) putLogo(ctx context.Context, logo *LogoUpload) (*Logo, error) {
	contentType := logo.ContentType
	if contentType == "" {
		contentType = SniffContentType(logo.Data)
	}
	if !IsImage(contentType) {
		return nil, ImageOnlyErr
	}
	if len(logo.Data) > MaxLogoSize {
		return nil, LogoTooLargeErr
	}

	key := storage.RandomKey(LogoKeyPrefix, s.nowTime())
	if err := s.store.Put(ctx, key, logo.Data, contentType); err != nil {
		return nil, pkgerrors.Wrap(err, "[Service.putLogo]")
	}
	return &Logo{Key: key, ContentType: contentType, Size: int64(len(logo.Data))}, nil
}

// dropLogo is best effort; an orphaned object only costs storage.
func (s *Service) dropLogo(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to delete logo object")
	}
}

// Logo returns the stored logo bytes of a listing. The caller closes the body.
func (s *Service) Logo(ctx context.Context, id string) (*storage.Object, error) {
	if !ValidID(id) {
		return nil, InvalidIPOIdErr
	}
	ipo, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, s.notFound(err, IPONotFoundErr, "[Service.Logo]")
	}
	if !ipo.HasLogo() {
		return nil, LogoNotFoundErr
	}

	obj, err := s.store.Get(ctx, ipo.CompanyLogo.Key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, LogoNotFoundErr
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Service.Logo]")
	}
	if obj.ContentType == "" {
		obj.ContentType = ipo.CompanyLogo.ContentType
	}
	return obj, nil
}

func (s *Service) Delete(ctx context.Context, id string) (*IPO, error) {
	if !ValidID(id) {
		return nil, InvalidIPOIdErr
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, s.notFound(err, IPONotFoundErr, "[Service.Delete]")
	}
	if deleted.HasLogo() {
		s.dropLogo(ctx, deleted.CompanyLogo.Key)
	}
	log.Info().Str("ipo", id).Msg("ipo deleted")
	return deleted, nil
}

func (s *Service) RemoveLogo(ctx context.Context, id string) (*IPO, error) {
	if !ValidID(id) {
		return nil, InvalidIPOIdErr
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, s.notFound(err, IPONotFoundErr, "[Service.RemoveLogo]")
	}
	updated, err := s.repo.SetLogo(ctx, id, nil)
	if err != nil {
		return nil, s.notFound(err, IPONotFoundErr, "[Service.RemoveLogo]")
	}
	if current.HasLogo() {
		s.dropLogo(ctx, current.CompanyLogo.Key)
	}
	return updated, nil
}

func (s *Service) Update(ctx context.Context, id string, raw map[string]any) (*IPO, error) {
	if !ValidID(id) {
		return nil, InvalidIDFormat
	}
	update, err := ParseUpdate(raw)
	if err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, id, update)
	if err != nil {
		return nil, s.notFound(err, UpdateNotFoundErr, "[Service.Update]")
	}
	return updated, nil
}

func (s *Service) notFound(err error, notFound error, op string) error {
	if errors.Is(err, ErrNotFound) {
		return notFound
	}
	return pkgerrors.Wrap(err, op)
}

// IsImage reports whether a MIME type is in the image/ family.
func IsImage(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}

// SniffContentType is used when a multipart part carries no type header.
func SniffContentType(data []byte) string {
	return http.DetectContentType(data[:min(len(data), 512)])
}
