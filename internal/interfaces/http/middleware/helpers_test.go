package middleware

import (
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// okRouter answers 200 "ok" on GET and POST /test behind mw.
func okRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	ok := func(c *gin.Context) { c.String(http.StatusOK, "ok") }
	r.GET("/test", ok)
	r.POST("/test", ok)
	return r
}

// serve sends method /test with the given headers (name, value pairs).
func serve(h http.Handler, method string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/test", nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}
