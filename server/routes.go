package server

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteTest, s.TestHandler())

	// Federated login
	s.RegisterRouteFunc("GET "+RouteGoogleLogin, s.GoogleLoginHandler())
	s.RegisterRouteFunc("GET "+RouteGoogleSignup, s.GoogleSignupHandler())
	s.RegisterRouteFunc("GET "+RouteGoogleCallback, s.GoogleCallbackHandler())
	s.RegisterRouteFunc("GET "+RouteOAuthVerifySession, s.OAuthVerifySessionHandler())
	s.RegisterRouteFunc("GET "+RouteOAuthAccountStatus, s.AccountStatusHandler())

	// Email/password
	s.RegisterRouteFunc("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.CaptchaMiddleware))
	s.RegisterRouteFunc("POST "+RouteAuthSignup, ChainMiddleware(s.SignupHandler(), s.CaptchaMiddleware))
	s.RegisterRouteFunc("GET "+RouteAuthVerifySession, s.VerifySessionHandler())
	s.RegisterRouteFunc("POST "+RouteAuthLogout, s.LogoutHandler())

	s.RegisterRouteFunc("POST "+RouteForgotPassword, s.ForgotPasswordHandler())
	s.RegisterRouteFunc("PATCH "+RouteResetPassword, s.ResetPasswordHandler())

	// IPOs; mutations need a session
	s.RegisterRouteFunc("GET "+RouteIPOFetchAll, s.FetchAllIPOsHandler())
	s.RegisterRouteFunc("GET "+RouteIPOLogo, s.IPOLogoHandler())
	s.RegisterRouteFunc("POST "+RouteIPORegister, ChainMiddleware(s.RegisterIPOHandler(), s.RequireSession()))
	s.RegisterRouteFunc("DELETE "+RouteIPODelete, ChainMiddleware(s.DeleteIPOHandler(), s.RequireSession()))
	s.RegisterRouteFunc("PATCH "+RouteIPORemoveLogo, ChainMiddleware(s.RemoveLogoHandler(), s.RequireSession()))
	s.RegisterRouteFunc("PATCH "+RouteIPOUpdate, ChainMiddleware(s.UpdateIPOHandler(), s.RequireSession()))

	s.RegisterRouteFunc("/", s.NotFoundHandler())
}
