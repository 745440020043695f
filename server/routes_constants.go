package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteTest = "/test"

	// Federated (Google) routes
	RouteGoogleLogin        = "/OAuth/account/google/login"
	RouteGoogleSignup       = "/OAuth/account/google/signup"
	RouteGoogleCallback     = "/OAuth/google/callback"
	RouteOAuthVerifySession = "/OAuth/verify-session"
	RouteOAuthAccountStatus = "/OAuth/account/status"

	// Email/password routes
	RouteAuthLogin         = "/auth/login"
	RouteAuthSignup        = "/auth/signup"
	RouteAuthVerifySession = "/auth/verify-session"
	RouteAuthLogout        = "/auth/logout"

	// Password management
	RouteForgotPassword = "/password/forgot-password"
	RouteResetPassword  = "/password/reset-password"

	// IPO routes
	RouteIPOFetchAll   = "/ipo/fetchall"
	RouteIPORegister   = "/ipo/register"
	RouteIPOLogo       = "/ipo/logo/{ipoId}"
	RouteIPODelete     = "/ipo/delete/{ipoId}"
	RouteIPORemoveLogo = "/ipo/remove-companylogo/{ipoId}"
	RouteIPOUpdate     = "/ipo/update/{ipoId}"
)

// blockedPaths answer 404 with an empty body, whatever the method.
var blockedPaths = []string{"/home", "/lib", "/server", "/wp-app.log"}
