package server

// Auth API routes, relative to the configured base path (default /api/auth)
const (
	RouteLoginURL  = "/login-url"
	RouteUserMe    = "/user/me"
	RouteCheck     = "/check"
	RouteCallback  = "/callback"
	RouteGetLogout = "/get-logout"
	RouteLogout    = "/logout"
	RouteHealth    = "/health"
	RoutePublic    = "/public"
)

// Absolute routes
const (
	RouteStudents  = "/api/students"
	RouteStudentID = "/api/students/{id}"
	RouteMetrics   = "/metrics"
)
