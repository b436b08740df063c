package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRecover_ConvertsPanicTo500(t *testing.T) {
	h := Recover(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestLogging_PassesThrough(t *testing.T) {
	h := Logging(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Equal(t, http.StatusTeapot, rr.Code)
}

func TestUserIDCtx(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)

	_, ok := UserIDFromCtx(req.Context())
	require.False(t, ok)

	ctx := WithUserID(req.Context(), 7)
	id, ok := UserIDFromCtx(ctx)
	require.True(t, ok)
	require.Equal(t, int64(7), id)
}
