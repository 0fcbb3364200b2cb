package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	appErrors "github.com/stevehedden/kgcatalog/pkg/errors"
)

func performRequest(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	r := gin.New()
	r.GET("/", handler)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestSuccessWithMeta(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		SuccessWithMeta(c, http.StatusOK, []string{"Q1"}, &Meta{Total: 1, Stale: true, Warning: "endpoint unreachable"})
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	require.Equal(t, 1, resp.Meta.Total)
	require.True(t, resp.Meta.Stale)
	require.Equal(t, "endpoint unreachable", resp.Meta.Warning)
}

func TestErrorRendersAppError(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Error(c, appErrors.ErrBadQueryResponse.WithInternal(errors.New("unexpected EOF")))
	})

	require.Equal(t, http.StatusBadGateway, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.Equal(t, "QUERY_ERROR", resp.Error.Code)
	// Internal details never leak to clients.
	require.NotContains(t, w.Body.String(), "unexpected EOF")
}

func TestErrorDefaultsToInternalServer(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Error(c, nil)
	})

	require.Equal(t, http.StatusInternalServerError, w.Code)
}
