package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/enesgrahovac/book-quest/internal/coursestore"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

// coursePrefix is the route prefix shared by course endpoints.
const coursePrefix = "/api/users/{user_id}/courses/{course_id}"

// courseKey reads and validates the course path parameters. It writes a 400
// response and returns false when they are malformed.
func courseKey(w http.ResponseWriter, r *http.Request) (coursestore.Key, bool) {
	k := coursestore.Key{UserID: r.PathValue("user_id"), CourseID: r.PathValue("course_id")}
	if err := k.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return k, false
	}
	return k, true
}

// coursePath builds a course URL for CLI commands.
func coursePath(userID, courseID, suffix string) string {
	return fmt.Sprintf("/api/users/%s/courses/%s%s", url.PathEscape(userID), url.PathEscape(courseID), suffix)
}

// decodeJSON reads a bounded JSON body. It writes a 400 response and returns
// false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err))
		return false
	}
	return true
}

// storeError maps course store errors to responses.
func storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, coursestore.ErrInvalidID) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
