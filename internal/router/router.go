package router

import (
	"net/http"

	"rubrica/internal/handlers"
	"rubrica/internal/middleware"
)

// BasePath is the API root stripped conceptually before route matching;
// every route below hangs off it.
const BasePath = "/api/v1"

// route is one row of the dispatch table
type route struct {
	method  string
	pattern string
	auth    bool
	handler http.HandlerFunc
}

// New builds the API router. Routes are declared as an explicit table and
// registered on a method-aware ServeMux; the mux prefers the most specific
// pattern, so the literal /reports/search can never be captured by
// /reports/{id}. For every known path an additional method-less fallback is
// registered, which is what turns an unsupported verb into a JSON 405
// instead of a 404.
func New(
	authHandler *handlers.AuthHandler,
	reportHandler *handlers.ReportHandler,
	listHandler *handlers.ListHandler,
	authMw *middleware.AuthMiddleware,
) *http.ServeMux {
	routes := []route{
		{http.MethodPost, "/auth/register", false, authHandler.Register},
		{http.MethodPost, "/auth/login", false, authHandler.Login},
		{http.MethodGet, "/auth/me", true, authHandler.Me},

		{http.MethodGet, "/reports", true, reportHandler.List},
		{http.MethodPost, "/reports", true, reportHandler.Create},
		{http.MethodPost, "/reports/search", true, reportHandler.Search},
		{http.MethodGet, "/reports/{id}", true, reportHandler.Get},
		{http.MethodPut, "/reports/{id}", true, reportHandler.Update},
		{http.MethodDelete, "/reports/{id}", true, reportHandler.Delete},

		{http.MethodGet, "/lists", true, listHandler.List},
		{http.MethodPost, "/lists", true, listHandler.Create},
		{http.MethodGet, "/lists/{id}", true, listHandler.Get},
		{http.MethodPut, "/lists/{id}", true, listHandler.Update},
		{http.MethodDelete, "/lists/{id}", true, listHandler.Delete},
	}

	mux := http.NewServeMux()

	patterns := make(map[string]bool)
	for _, rt := range routes {
		var h http.Handler = rt.handler
		if rt.auth {
			h = authMw.Authenticate(h)
		}
		mux.Handle(rt.method+" "+BasePath+rt.pattern, h)

		if !patterns[rt.pattern] {
			patterns[rt.pattern] = true
			mux.HandleFunc(BasePath+rt.pattern, methodNotAllowed)
		}
	}

	mux.HandleFunc("/", notFound)

	return mux
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Not found")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write([]byte(`{"message":"` + message + `"}`))
}
