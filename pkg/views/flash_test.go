package views_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goliatone/go-formbind/pkg/views"
)

func TestFlashRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	views.SetFlash(rec, "flash", "account closed")

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])

	next := httptest.NewRecorder()
	if got := views.PopFlash(next, req, "flash"); got != "account closed" {
		t.Fatalf("PopFlash() = %q", got)
	}

	cleared := next.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge != -1 {
		t.Fatalf("flash cookie was not cleared: %+v", cleared)
	}
}

func TestPopFlashMissingCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := views.PopFlash(httptest.NewRecorder(), req, "flash"); got != "" {
		t.Fatalf("PopFlash() = %q, want empty", got)
	}
}
