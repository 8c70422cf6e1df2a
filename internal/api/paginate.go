package api

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"time"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// parsePagination extracts cursor and limit from query parameters.
// limit defaults to 20 and is silently capped at 100.
func parsePagination(r *http.Request) (cursor string, limit int) {
	cursor = r.URL.Query().Get("cursor")
	limit = defaultLimit

	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	if limit > maxLimit {
		limit = maxLimit
	}

	return cursor, limit
}

// encodeCursor encodes the created_at of the last item on a page.
func encodeCursor(t time.Time) string {
	return base64.URLEncoding.EncodeToString([]byte(t.UTC().Format(time.RFC3339Nano)))
}

// decodeCursor returns the time encoded in cursor. ok is false for a
// malformed cursor; an empty cursor decodes to the zero time.
func decodeCursor(cursor string) (t time.Time, ok bool) {
	if cursor == "" {
		return time.Time{}, true
	}
	b, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, false
	}
	t, err = time.Parse(time.RFC3339Nano, string(b))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
