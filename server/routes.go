package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.LoggingMiddleware)
	s.router.Use(s.RecoverMiddleware)
	s.router.Use(s.CorsMiddleware)

	s.router.Route(s.config.GetAPIBasePath(), func(r chi.Router) {
		r.Get(RouteLoginURL, s.LoginURLHandler())
		r.Get(RouteUserMe, s.CurrentUserHandler())
		r.Get(RouteCheck, s.CheckHandler())
		r.Post(RouteCallback, s.CallbackHandler())
		r.Get(RouteGetLogout, s.GetLogoutHandler())
		r.Post(RouteLogout, s.LogoutHandler())
		r.Get(RouteHealth, s.HealthHandler())
		r.Get(RoutePublic, s.PublicHandler())
	})

	s.router.Get(RouteStudents, s.ListStudentsHandler())
	s.router.Post(RouteStudents, s.CreateStudentHandler())
	s.router.Get(RouteStudentID, s.GetStudentHandler())
	s.router.Put(RouteStudentID, s.UpdateStudentHandler())
	s.router.Delete(RouteStudentID, s.DeleteStudentHandler())

	if s.gatherer != nil {
		s.router.Handle(RouteMetrics, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, "404 - Page Not Found")
	})
}
