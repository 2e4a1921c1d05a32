package providers

import (
	"net/http"

	"fmd/internal/structures"
)

// RouterProviderInterface collects the dashboard's route table before it is
// mounted. Every endpoint in this API answers exactly one method (reads are
// GET, mutations are POST, including the history delete), so registration
// pins the method and everything else gets a 405.
type RouterProviderInterface interface {
	Get(url string, handler http.Handler)
	Post(url string, handler http.Handler)
	GetRoutes() []structures.Route
}

type RouterProvider struct {
	routes []structures.Route
}

func NewRouterProvider() RouterProviderInterface {
	return &RouterProvider{}
}

func (rp *RouterProvider) Get(url string, handler http.Handler) {
	rp.add(http.MethodGet, url, handler)
}

func (rp *RouterProvider) Post(url string, handler http.Handler) {
	rp.add(http.MethodPost, url, handler)
}

func (rp *RouterProvider) add(method, url string, handler http.Handler) {
	rp.routes = append(rp.routes, structures.Route{
		Url:     url,
		Handler: allowOnly(method, handler),
	})
}

func (rp *RouterProvider) GetRoutes() []structures.Route {
	return rp.routes
}

// allowOnly guards a handler behind its registered method. The Allow header
// tells the dashboard which verb the endpoint actually takes.
func allowOnly(method string, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
