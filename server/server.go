package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/ipo-auth-server/auth"
	"github.com/jrsteele09/ipo-auth-server/auth/sessions"
	"github.com/jrsteele09/ipo-auth-server/captcha"
	"github.com/jrsteele09/ipo-auth-server/internal/config"
	"github.com/jrsteele09/ipo-auth-server/internal/ratelimit"
	"github.com/jrsteele09/ipo-auth-server/ipos"
)

// Deps are the services the HTTP layer drives.
type Deps struct {
	Auth    *auth.Service
	IPOs    *ipos.Service
	Cookies *sessions.CookieCodec
	Limiter ratelimit.Limiter
	// Captcha may be nil outside production, in which case tokens are not checked.
	Captcha captcha.Verifier
}

type Server struct {
	env     string
	mux     *http.ServeMux
	handler http.Handler
	routes  []string
	config  config.Config

	auth    *auth.Service
	ipos    *ipos.Service
	cookies *sessions.CookieCodec
	limiter ratelimit.Limiter
	captcha captcha.Verifier
}

func New(cfg config.Config, deps Deps) (*Server, error) {
	if deps.Auth == nil {
		return nil, errors.New("[Server New] auth service is required")
	}
	if deps.IPOs == nil {
		return nil, errors.New("[Server New] ipo service is required")
	}
	if deps.Cookies == nil {
		return nil, errors.New("[Server New] cookie codec is required")
	}
	if deps.Captcha == nil && cfg.IsProduction() {
		return nil, errors.New("[Server New] reCAPTCHA verifier is required in production")
	}

	limiter := deps.Limiter
	if limiter == nil {
		limiter = ratelimit.NewInMemoryLimiter(cfg.GetRateLimitMax(), cfg.GetRateLimitWindow())
	}

	s := &Server{
		env:     cfg.GetEnv(),
		mux:     http.NewServeMux(),
		config:  cfg,
		auth:    deps.Auth,
		ipos:    deps.IPOs,
		cookies: deps.Cookies,
		limiter: limiter,
		captcha: deps.Captcha,
	}
	if s.captcha == nil {
		log.Warn().Msg("RECAPTCHA_SECRET_KEY not set, reCAPTCHA checks are disabled")
	}

	s.initRoutes()
	s.handler = ChainMiddleware(s.mux.ServeHTTP, s.GlobalMiddleware()...)
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	log.Debug().Msgf("[%s] %s", color+paddedMethod+ResetColor, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
