package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func record(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("GET", "/api/boards", nil)
	handler(c)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse envelope: %v", err)
	}
	return resp
}

func TestSuccess(t *testing.T) {
	w := record(func(c *gin.Context) {
		Success(c, map[string]string{"title": "sprint board"})
	})

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	resp := decode(t, w)
	if resp.Code != 0 || resp.Message != "ok" {
		t.Errorf("envelope = %+v, expected code 0 message ok", resp)
	}
}

func TestCreated(t *testing.T) {
	w := record(func(c *gin.Context) {
		Created(c, map[string]int{"id": 12})
	})

	if w.Code != http.StatusCreated {
		t.Errorf("expected status %d, got %d", http.StatusCreated, w.Code)
	}
	if resp := decode(t, w); resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestShorthandSenders(t *testing.T) {
	tests := []struct {
		name    string
		send    func(c *gin.Context)
		status  int
		message string
	}{
		{"bad request", func(c *gin.Context) { BadRequest(c, "invalid board id") },
			http.StatusBadRequest, "invalid board id"},
		{"unauthorized", func(c *gin.Context) { Unauthorized(c, "invalid or expired token") },
			http.StatusUnauthorized, "invalid or expired token"},
		{"forbidden", func(c *gin.Context) { Forbidden(c, "admin access required") },
			http.StatusForbidden, "admin access required"},
		{"not found", func(c *gin.Context) { NotFound(c, "task not found") },
			http.StatusNotFound, "task not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := record(tt.send)
			if w.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, w.Code)
			}
			resp := decode(t, w)
			if resp.Code != tt.status {
				t.Errorf("expected code %d, got %d", tt.status, resp.Code)
			}
			if resp.Message != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, resp.Message)
			}
		})
	}
}

func TestError_KeepsAppErrorStatus(t *testing.T) {
	w := record(func(c *gin.Context) {
		Error(c, NewForbidden("only the board owner can delete the board"))
	})

	if w.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, w.Code)
	}
	resp := decode(t, w)
	if resp.Code != 403 {
		t.Errorf("expected code 403, got %d", resp.Code)
	}
	if resp.Message != "only the board owner can delete the board" {
		t.Errorf("unexpected message %q", resp.Message)
	}
}

func TestError_WrappedAppError(t *testing.T) {
	w := record(func(c *gin.Context) {
		Error(c, errors.Join(NewNotFound("board not found")))
	})

	if w.Code != http.StatusNotFound {
		t.Errorf("wrapped AppError should keep status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestError_UnexpectedErrorIs500(t *testing.T) {
	w := record(func(c *gin.Context) {
		Error(c, errors.New("connection reset"))
	})

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
	if resp := decode(t, w); resp.Code != 500 {
		t.Errorf("expected code 500, got %d", resp.Code)
	}
}

func TestAppError_ErrorInterface(t *testing.T) {
	err := NewBadRequest("members: unknown user ids [9]")
	if err.Error() != "members: unknown user ids [9]" {
		t.Errorf("Error() = %q", err.Error())
	}
}
