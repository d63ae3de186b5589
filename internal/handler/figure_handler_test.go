package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFigureHandlerAddRequiresFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewFigureHandler(nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/articles/article-1/figures", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "article-1"}}

	handler.Add(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFigureHandlerMissingImage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewFigureHandler(nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/figures/missing/image", nil)
	c.Request = req

	handler.MissingImage(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "figure unavailable")
}
