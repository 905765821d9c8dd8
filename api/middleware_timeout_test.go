package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rightsdesk/docket-api/api"
)

func TestTimeoutMiddleware_SlowHandlerTimesOut(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		time.Sleep(50 * time.Millisecond)
	})

	req := httptest.NewRequest("GET", "/api/v1/dockets", nil)
	rr := httptest.NewRecorder()
	api.TimeoutMiddleware(20 * time.Millisecond)(slow).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusRequestTimeout, rr.Code)
}

func TestTimeoutMiddleware_FastHandlerPassesThrough(t *testing.T) {
	fast := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest("GET", "/api/v1/dockets", nil)
	rr := httptest.NewRecorder()
	api.TimeoutMiddleware(time.Second)(fast).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestWithQueryTimeout_SetsDeadline(t *testing.T) {
	ctx, cancel := api.WithQueryTimeout(nil)
	defer cancel()

	deadline, ok := ctx.Deadline()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(api.QueryTimeout), deadline, time.Second)
}
