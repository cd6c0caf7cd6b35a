package providers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type requestTestLogger struct {
	cacheTestLogger
	debugTypes []TypeEnum
}

func (m *requestTestLogger) Debugf(t TypeEnum, _ string, _ ...interface{}) {
	m.debugTypes = append(m.debugTypes, t)
}

func TestRequestIDMiddleware_AssignsID(t *testing.T) {
	logger := &requestTestLogger{}
	var seen string
	h := RequestIDMiddleware(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(RequestIDHeader)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/preferences", nil))

	id := rr.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, seen)
	assert.Equal(t, []TypeEnum{TypePost}, logger.debugTypes)
}

func TestRequestIDMiddleware_KeepsCallerID(t *testing.T) {
	h := RequestIDMiddleware(&requestTestLogger{}, dummyHandler("ok"))

	req := httptest.NewRequest(http.MethodGet, "/timeline", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "abc", rr.Header().Get(RequestIDHeader))
}
