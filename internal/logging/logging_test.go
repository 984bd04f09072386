package logging_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/gin-gonic/gin"

	"github.com/Ramon98292347/ravic-joias-sub000/internal/logging"
)

func TestNewFallsBackToInfo(t *testing.T) {
	c := qt.New(t)
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "nonsense", "json")

	logger.Debug().Msg("hidden")
	logger.Info().Msg("shown")

	c.Assert(bytes.Contains(buf.Bytes(), []byte("hidden")), qt.IsFalse)
	c.Assert(bytes.Contains(buf.Bytes(), []byte("shown")), qt.IsTrue)
}

func TestMiddlewareLogsRequest(t *testing.T) {
	c := qt.New(t)
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := logging.Component(logging.NewWithWriter(&buf, "debug", "json"), "http")

	r := gin.New()
	r.Use(logging.Middleware(logger))
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing?x=1", nil))

	var line map[string]any
	c.Assert(json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line), qt.IsNil)
	c.Assert(line["level"], qt.Equals, "warn")
	c.Assert(line["component"], qt.Equals, "http")
	c.Assert(line["path"], qt.Equals, "/missing?x=1")
	c.Assert(line["status"], qt.Equals, float64(404))
}
