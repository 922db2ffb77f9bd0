package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/recordbook/recordbook/pkg/logger"
	"github.com/recordbook/recordbook/pkg/metrics"
	"github.com/recordbook/recordbook/pkg/response"
)

func TestRequestIDGeneratedAndEchoed(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	var seen string
	r.GET("/id", func(c *gin.Context) {
		seen = c.GetString(response.RequestIDKey)
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/id", nil))
	require.NotEmpty(t, seen)
	require.Equal(t, seen, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest("GET", "/id", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestProcessTimeHeader(t *testing.T) {
	r := gin.New()
	r.Use(ProcessTime())
	r.GET("/json", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	r.GET("/empty", func(c *gin.Context) { c.Status(http.StatusAccepted) })
	r.GET("/abort", func(c *gin.Context) { c.AbortWithStatus(http.StatusTeapot) })

	for _, path := range []string{"/json", "/empty", "/abort"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		v := w.Header().Get(ProcessTimeHeader)
		require.NotEmpty(t, v, path)
		secs, err := strconv.ParseFloat(v, 64)
		require.NoError(t, err, path)
		require.GreaterOrEqual(t, secs, 0.0, path)
	}
}

func TestRequestLoggerWritesAccessLine(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf, "json")
	t.Cleanup(func() { logger.SetOutput(os.Stdout, "console") })

	before := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("GET", "/items/:id", "404"))

	r := gin.New()
	r.Use(RequestID(), RequestLogger())
	r.GET("/items/:id", func(c *gin.Context) { c.JSON(http.StatusNotFound, gin.H{"message": "Not Found"}) })

	req := httptest.NewRequest("GET", "/items/7", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	require.Equal(t, "warn", line["level"])
	require.Equal(t, "req-1", line["request_id"])
	require.Equal(t, "/items/7", line["path"])
	require.Equal(t, float64(404), line["status"])

	require.Equal(t, before+1, testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("GET", "/items/:id", "404")))
}

func TestRecoveryAndJSONFallbacks(t *testing.T) {
	r := gin.New()
	JSONFallbacks(r)
	r.Use(RequestID(), Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.JSONEq(t, `{"message":"`+response.UnexpectedMessage+`"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/missing", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
	require.JSONEq(t, `{"message":"Not Found"}`, w.Body.String())
	require.NotEmpty(t, w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/boom", nil))
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	require.JSONEq(t, `{"message":"Method Not Allowed"}`, w.Body.String())
}
