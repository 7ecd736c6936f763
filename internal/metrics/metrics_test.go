package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Get("/plain", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	teapots := httpRequestsTotal.WithLabelValues(http.MethodGet, "/items/{id}", "418")
	plain := httpRequestsTotal.WithLabelValues(http.MethodGet, "/plain", "200")
	beforeTeapots, beforePlain := testutil.ToFloat64(teapots), testutil.ToFloat64(plain)

	for _, path := range []string{"/items/1", "/items/2", "/plain"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, beforeTeapots+2, testutil.ToFloat64(teapots))
	assert.Equal(t, beforePlain+1, testutil.ToFloat64(plain))
}
