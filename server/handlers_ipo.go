package server

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"

	apperrors "github.com/jrsteele09/ipo-auth-server/internal/errors"
	"github.com/jrsteele09/ipo-auth-server/ipos"
)

const logoFormField = "companyLogo"

func (s *Server) FetchAllIPOsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.ipos.List(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": list})
	}
}

// RegisterIPOHandler takes a multipart form with the listing fields and an
// optional companyLogo image.
func (s *Server) RegisterIPOHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, logo, err := s.readIPOForm(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		ipo, err := ipos.FromForm(form)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		created, err := s.ipos.Register(r.Context(), ipo, logo)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if p, ok := PrincipalFromContext(r.Context()); ok {
			log.Info().Str("userId", p.ID).Str("ipo", created.ID).Msg("ipo registered by user")
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"success": true,
			"message": "IPO created successfully!",
			"data":    created,
		})
	}
}

func (s *Server) readIPOForm(r *http.Request) (url.Values, *ipos.LogoUpload, error) {
	if err := r.ParseMultipartForm(s.config.GetUploadLimit()); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, nil, payloadTooLarge()
		}
		if errors.Is(err, http.ErrNotMultipart) {
			// url-encoded forms may register without a logo; other bodies leave the form empty
			if err := r.ParseForm(); err != nil {
				return nil, nil, apperrors.Wrap(err, apperrors.KindValidation, apperrors.ReasonInvalidBody, "Invalid credentials!")
			}
			return r.PostForm, nil, nil
		}
		return nil, nil, apperrors.Wrap(err, apperrors.KindValidation, apperrors.ReasonInvalidBody, "Invalid credentials!")
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	form := url.Values(r.MultipartForm.Value)
	files := r.MultipartForm.File[logoFormField]
	if len(files) == 0 {
		return form, nil, nil
	}

	header := files[0]
	contentType := header.Header.Get("Content-Type")
	if contentType != "" && !ipos.IsImage(contentType) {
		return nil, nil, ipos.ImageOnlyErr
	}
	if header.Size > s.config.GetUploadLimit() {
		return nil, nil, ipos.LogoTooLargeErr
	}
	f, err := header.Open()
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.KindValidation, apperrors.ReasonInvalidUpload, "Invalid upload")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.KindValidation, apperrors.ReasonInvalidUpload, "Invalid upload")
	}
	return form, &ipos.LogoUpload{Data: data, ContentType: contentType}, nil
}

// IPOLogoHandler streams the stored logo bytes.
func (s *Server) IPOLogoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		obj, err := s.ipos.Logo(r.Context(), r.PathValue("ipoId"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		defer obj.Body.Close()

		h := w.Header()
		h.Set("Content-Type", obj.ContentType)
		if obj.Size > 0 {
			h.Set("Content-Length", strconv.FormatInt(obj.Size, 10))
		}
		h.Set("Cache-Control", "public, max-age=300")
		// the frontend embeds logos from another origin
		h.Set("Cross-Origin-Resource-Policy", "cross-origin")
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, obj.Body); err != nil {
			log.Warn().Err(err).Msg("logo stream interrupted")
		}
	}
}

func (s *Server) DeleteIPOHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deleted, err := s.ipos.Delete(r.Context(), r.PathValue("ipoId"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "IPO deleted successfully",
			"data": map[string]any{
				"id":          deleted.ID,
				"companyName": deleted.CompanyName,
			},
		})
	}
}

func (s *Server) RemoveLogoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		updated, err := s.ipos.RemoveLogo(r.Context(), r.PathValue("ipoId"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": updated})
	}
}

func (s *Server) UpdateIPOHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("ipoId")
		if !ipos.ValidID(id) {
			s.writeError(w, r, ipos.InvalidIDFormat)
			return
		}
		var raw map[string]any
		if err := decodeJSON(r, &raw); err != nil {
			s.writeError(w, r, err)
			return
		}

		updated, err := s.ipos.Update(r.Context(), id, raw)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "IPO updated successfully",
			"data":    updated,
		})
	}
}
