package providers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dummyHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	})
}

func serve(h http.Handler, method, url string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, url, nil))
	return rr
}

func TestRouterProvider_GetAddsRoute(t *testing.T) {
	rp := NewRouterProvider()
	rp.Get("/test", dummyHandler("ok"))

	routes := rp.GetRoutes()
	require.Len(t, routes, 1)
	assert.Equal(t, "/test", routes[0].Url)
}

func TestRouterProvider_PostAddsRoute(t *testing.T) {
	rp := NewRouterProvider()
	rp.Post("/submit", dummyHandler("ok"))

	routes := rp.GetRoutes()
	require.Len(t, routes, 1)
	assert.Equal(t, "/submit", routes[0].Url)
}

func TestRouterProvider_MultipleRoutes(t *testing.T) {
	rp := NewRouterProvider()
	rp.Get("/a", dummyHandler("ok"))
	rp.Post("/b", dummyHandler("ok"))
	rp.Get("/c", dummyHandler("ok"))

	routes := rp.GetRoutes()
	assert.Len(t, routes, 3)
}

func TestRouterProvider_SameUrlDifferentMethods(t *testing.T) {
	rp := NewRouterProvider()
	rp.Get("/preferences", dummyHandler("read"))
	rp.Post("/preferences", dummyHandler("write"))

	routes := rp.GetRoutes()
	require.Len(t, routes, 1)

	rr := serve(routes[0].Handler, http.MethodGet, "/preferences")
	assert.Equal(t, "read", rr.Body.String())

	rr = serve(routes[0].Handler, http.MethodPost, "/preferences")
	assert.Equal(t, "write", rr.Body.String())

	rr = serve(routes[0].Handler, http.MethodDelete, "/preferences")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "GET, POST", rr.Header().Get("Allow"))
}

func TestRouterProvider_GetRouteRejectsPost(t *testing.T) {
	rp := NewRouterProvider()
	rp.Get("/test", dummyHandler("ok"))

	rr := serve(rp.GetRoutes()[0].Handler, http.MethodPost, "/test")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRouterProvider_PostRouteRejectsGet(t *testing.T) {
	rp := NewRouterProvider()
	rp.Post("/submit", dummyHandler("ok"))

	rr := serve(rp.GetRoutes()[0].Handler, http.MethodGet, "/submit")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
