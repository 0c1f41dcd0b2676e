package wizard

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"

	"github.com/goliatone/go-formbind/pkg/views"
)

// sessionID returns the wizard session identifier, issuing a fresh cookie
// when the request carries none.
func sessionID(w http.ResponseWriter, r *http.Request, cookieName string) (string, error) {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("wizard: issue session id: %w", err)
	}
	id := hex.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id, nil
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var herr views.HTTPError
	if errors.As(err, &herr) {
		if code := herr.StatusCode(); code > 0 {
			status = code
		}
	}
	http.Error(w, err.Error(), status)
}
