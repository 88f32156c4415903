package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiking-backend/utils"
)

var secret = []byte("middleware-secret")

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), ErrorEnvelope())
	r.GET("/x", handlers...)
	return r
}

func serve(r *gin.Engine, header map[string]string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	body := map[string]interface{}{}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func Test_ErrorEnvelopeMapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{utils.Validation("bad input", map[string]string{"f": "x"}), http.StatusBadRequest, "bad input"},
		{utils.NotFound("gone"), http.StatusNotFound, "gone"},
		{utils.PermissionDenied("nope"), http.StatusForbidden, "nope"},
		{utils.Unauthorized("who"), http.StatusUnauthorized, "who"},
		{errors.New("db exploded: password=hunter2"), http.StatusInternalServerError, "Internal server error"},
		{utils.Internal("signing failed", errors.New("boom")), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		err := tc.err
		r := newEngine(func(c *gin.Context) { c.Error(err) })
		rec, body := serve(r, nil)

		assert.Equal(t, tc.status, rec.Code, tc.msg)
		assert.Equal(t, true, body["error"])
		assert.Equal(t, tc.msg, body["message"])
		assert.EqualValues(t, tc.status, body["status_code"])
	}
}

func Test_ErrorEnvelopeIncludesDetails(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		c.Error(utils.Validation("invalid", map[string]string{"participants": "must be greater than zero"}))
	})
	_, body := serve(r, nil)
	details, ok := body["details"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "must be greater than zero", details["participants"])
}

func Test_ErrorEnvelopeLeavesSuccessAlone(t *testing.T) {
	r := newEngine(func(c *gin.Context) { utils.JSONSuccess(c, http.StatusOK, "ok", gin.H{"n": 1}) })
	rec, body := serve(r, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["error"])
	assert.Equal(t, "ok", body["message"])
}

func Test_RequestIDPropagates(t *testing.T) {
	r := newEngine(func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	rec, _ := serve(r, map[string]string{RequestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", rec.Body.String())

	rec, _ = serve(r, nil)
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
}

func Test_AuthRequired(t *testing.T) {
	r := newEngine(AuthRequired(secret), func(c *gin.Context) {
		id, ok := CurrentUserID(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": id, "staff": IsStaff(c)})
	})

	rec, body := serve(r, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.EqualValues(t, http.StatusUnauthorized, body["status_code"])

	rec, _ = serve(r, map[string]string{"Authorization": "Token abc"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	expired, err := utils.GenerateJWT(secret, -time.Minute, 7, "ann", false)
	require.NoError(t, err)
	rec, _ = serve(r, map[string]string{"Authorization": "Bearer " + expired})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	forged, err := utils.GenerateJWT([]byte("other-secret"), time.Hour, 7, "ann", true)
	require.NoError(t, err)
	rec, _ = serve(r, map[string]string{"Authorization": "Bearer " + forged})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	valid, err := utils.GenerateJWT(secret, time.Hour, 7, "ann", true)
	require.NoError(t, err)
	rec, body = serve(r, map[string]string{"Authorization": "Bearer " + valid})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 7, body["id"])
	assert.Equal(t, true, body["staff"])
}

func Test_StaffOnly(t *testing.T) {
	r := newEngine(AuthRequired(secret), StaffOnly(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	walker, err := utils.GenerateJWT(secret, time.Hour, 1, "walker", false)
	require.NoError(t, err)
	rec, body := serve(r, map[string]string{"Authorization": "Bearer " + walker})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.EqualValues(t, http.StatusForbidden, body["status_code"])

	guide, err := utils.GenerateJWT(secret, time.Hour, 2, "guide", true)
	require.NoError(t, err)
	rec, _ = serve(r, map[string]string{"Authorization": "Bearer " + guide})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func Test_RateLimitPerClient(t *testing.T) {
	limiter := NewRateLimiter(0.001, 2)
	r := newEngine(limiter.Limit(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 2; i++ {
		rec, _ := serve(r, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
	rec, body := serve(r, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.EqualValues(t, http.StatusTooManyRequests, body["status_code"])
	assert.Equal(t, true, body["error"])
	assert.Equal(t, "Too many requests. Please try again later.", body["message"])

	limiter.idleTTL = -time.Second
	limiter.Cleanup()
	rec, _ = serve(r, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code, "a swept client starts with a fresh bucket")
}

func Test_RecoverRendersEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Recover(), ErrorEnvelope())
	r.GET("/x", func(c *gin.Context) { panic("boom") })

	rec, body := serve(r, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, true, body["error"])
	assert.Equal(t, "Internal server error", body["message"])
	assert.EqualValues(t, http.StatusInternalServerError, body["status_code"])
	assert.NotContains(t, rec.Body.String(), "boom")
}
