package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/x", nil)
	router.ServeHTTP(w, req)

	id := w.Header().Get(RequestIDHeader)
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("generated id %q is not a uuid", id)
	}
	if w.Body.String() != id {
		t.Errorf("context id %q differs from header %q", w.Body.String(), id)
	}

	incoming := uuid.NewString()
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/x", nil)
	req.Header.Set(RequestIDHeader, incoming)
	router.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != incoming {
		t.Errorf("expected incoming id to be kept, got %q", got)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/x", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	router.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got == "<script>" {
		t.Error("malformed incoming id must be replaced")
	}
}
