package providers

import (
	"net/http"
	"sort"
	"strings"

	"birdsong/internal/structures"
)

type RouterProviderInterface interface {
	Get(url string, handler http.Handler)
	Post(url string, handler http.Handler)
	GetRoutes() []structures.Route
}

// RouterProvider registers one route per URL; every method registered on
// that URL is dispatched by the route's handler.
type RouterProvider struct {
	routes []structures.Route
	byUrl  map[string]*methodMux
}

func (rp *RouterProvider) Get(url string, handler http.Handler) {
	rp.handle(http.MethodGet, url, handler)
}

func (rp *RouterProvider) Post(url string, handler http.Handler) {
	rp.handle(http.MethodPost, url, handler)
}

func (rp *RouterProvider) handle(method, url string, handler http.Handler) {
	mm, ok := rp.byUrl[url]
	if !ok {
		mm = &methodMux{handlers: make(map[string]http.Handler)}
		rp.byUrl[url] = mm
		rp.routes = append(rp.routes, structures.Route{Url: url, Handler: mm})
	}
	mm.handlers[method] = handler
}

func (rp *RouterProvider) GetRoutes() []structures.Route {
	return rp.routes
}

func NewRouterProvider() RouterProviderInterface {
	return &RouterProvider{byUrl: make(map[string]*methodMux)}
}

type methodMux struct {
	handlers map[string]http.Handler
}

func (mm *methodMux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler, ok := mm.handlers[r.Method]
	if !ok {
		w.Header().Set("Allow", mm.allowed())
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	handler.ServeHTTP(w, r)
}

func (mm *methodMux) allowed() string {
	methods := make([]string, 0, len(mm.handlers))
	for m := range mm.handlers {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
