package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentHandler_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(InstrumentHandler)
	r.Get("/api/cards/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/cards/{id}", "418"))

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cards/"+id, nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
	}

	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/cards/{id}", "418"))
	assert.Equal(t, 2.0, after-before)
}

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(reviews.WithLabelValues("good"))
	RecordReview("good")
	assert.Equal(t, 1.0, testutil.ToFloat64(reviews.WithLabelValues("good"))-before)

	hits := testutil.ToFloat64(forecasts.WithLabelValues("hit"))
	RecordForecast(true)
	RecordForecast(false)
	assert.Equal(t, 1.0, testutil.ToFloat64(forecasts.WithLabelValues("hit"))-hits)

	done := testutil.ToFloat64(tasks.WithLabelValues("entry_analysis", "completed"))
	RecordTask("entry_analysis", "completed", 40*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(tasks.WithLabelValues("entry_analysis", "completed"))-done)
}

func TestHandler(t *testing.T) {
	RecordReview("easy")

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `quill_srs_reviews_total{outcome="easy"}`)
}
