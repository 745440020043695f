package server

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/zerolog/log"

	apperrors "github.com/jrsteele09/ipo-auth-server/internal/errors"
)

const multipartOverhead = 1 << 20

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

// GlobalMiddleware runs in front of every route, outermost first.
func (s *Server) GlobalMiddleware() []func(http.HandlerFunc) http.HandlerFunc {
	return []func(http.HandlerFunc) http.HandlerFunc{
		s.RecoverMiddleware,
		s.LoggingMiddleware,
		s.SecurityHeadersMiddleware,
		s.BlockedPathsMiddleware,
		s.CorsMiddleware,
		s.RateLimitMiddleware,
		s.CompressionMiddleware,
		s.BodyLimitMiddleware,
		s.QuerySanitizerMiddleware,
	}
}

func (s *Server) RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("recovered from panic")
				s.writeError(w, r, apperrors.From(fmt.Errorf("panic: %v", rec)))
			}
		}()
		next(w, r)
	}
}

// statusRecorder captures the status code for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rec *statusRecorder) WriteHeader(code int) {
	if rec.status == 0 {
		rec.status = code
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += n
	return n, err
}

func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

func (s *Server) LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", rec.bytes).
			Dur("duration", time.Since(start)).
			Str("ip", clientIP(r)).
			Msg("request")
	}
}

func (s *Server) SecurityHeadersMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Security-Policy", "default-src 'self'; base-uri 'self'; font-src 'self' https: data:; "+
			"form-action 'self'; frame-ancestors 'self'; img-src 'self' data:; object-src 'none'; "+
			"script-src 'self'; script-src-attr 'none'; style-src 'self' https: 'unsafe-inline'; upgrade-insecure-requests")
		h.Set("Cross-Origin-Opener-Policy", "same-origin")
		h.Set("Cross-Origin-Resource-Policy", "same-origin")
		h.Set("Origin-Agent-Cluster", "?1")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-DNS-Prefetch-Control", "off")
		h.Set("X-Download-Options", "noopen")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("X-Permitted-Cross-Domain-Policies", "none")
		h.Set("X-XSS-Protection", "0")
		next(w, r)
	}
}

// BlockedPathsMiddleware answers common scanner probes before they reach any route.
func (s *Server) BlockedPathsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, p := range blockedPaths {
			if r.URL.Path == p || strings.HasPrefix(r.URL.Path, p+"/") {
				w.WriteHeader(http.StatusNotFound)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) CorsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		// No Origin header = same-origin request, no CORS headers needed
		if origin == "" {
			next(w, r)
			return
		}

		w.Header().Add("Vary", "Origin")
		isAllowed := s.config.GetAllowedOrigins().IsAllowedOrigin(origin)

		if r.Method == http.MethodOptions {
			if isAllowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods", s.config.GetAllowedMethods())
				w.Header().Set("Access-Control-Allow-Headers", s.config.GetAllowedHeaders())
				w.Header().Set("Access-Control-Expose-Headers", s.config.GetExposedHeaders())
			}
			// Not allowed: no CORS headers, the browser blocks the real request
			w.Header().Set("Content-Length", "0")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if isAllowed {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Expose-Headers", s.config.GetExposedHeaders())
		}

		next(w, r)
	}
}

// RateLimitMiddleware counts requests per client IP in a fixed window. When the
// counter store is unreachable requests are let through.
func (s *Server) RateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	policy := strconv.Itoa(s.config.GetRateLimitMax()) + ";w=" + strconv.Itoa(int(s.config.GetRateLimitWindow().Seconds()))

	return func(w http.ResponseWriter, r *http.Request) {
		res, err := s.limiter.Allow(r.Context(), clientIP(r))
		if err != nil {
			log.Warn().Err(err).Msg("rate limiter unavailable")
			next(w, r)
			return
		}

		h := w.Header()
		h.Set("RateLimit-Policy", policy)
		h.Set("RateLimit-Limit", strconv.Itoa(res.Limit))
		h.Set("RateLimit-Remaining", strconv.Itoa(res.Remaining))
		h.Set("RateLimit-Reset", strconv.Itoa(int((res.Reset+time.Second-1)/time.Second)))

		if !res.Allowed {
			h.Set("Retry-After", h.Get("RateLimit-Reset"))
			s.writeError(w, r, apperrors.New(apperrors.KindRateLimited, apperrors.ReasonRateLimited,
				"Too many requests from this IP, please try again later."))
			return
		}
		next(w, r)
	}
}

// CompressionMiddleware gzips responses for clients that accept it. Small
// bodies and already compressed content types are passed through.
func (s *Server) CompressionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return gzhttp.GzipHandler(next).ServeHTTP
}

// BodyLimitMiddleware caps request bodies: the upload limit plus form overhead
// for multipart, the JSON limit for everything else.
func (s *Server) BodyLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil && r.Body != http.NoBody {
			limit := s.config.GetJSONBodyLimit()
			if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
				limit = s.config.GetUploadLimit() + multipartOverhead
			}
			if r.ContentLength > limit {
				s.writeError(w, r, payloadTooLarge())
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
		}
		next(w, r)
	}
}

// QuerySanitizerMiddleware drops query keys that could be read as Mongo
// operators or dotted paths.
func (s *Server) QuerySanitizerMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			query := r.URL.Query()
			dirty := false
			for key := range query {
				if unsafeKey(key) {
					query.Del(key)
					dirty = true
				}
			}
			if dirty {
				r.URL.RawQuery = query.Encode()
			}
		}
		next(w, r)
	}
}

func unsafeKey(key string) bool {
	return strings.ContainsAny(key, "$.")
}

// clientIP trusts one proxy hop, taking the last X-Forwarded-For entry.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if ip := strings.TrimSpace(parts[len(parts)-1]); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
