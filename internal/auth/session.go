package auth

import (
	"net/http"
	"time"

	"github.com/alexedwards/scs/mysqlstore"
	"github.com/alexedwards/scs/postgresstore"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
)

const (
	SessionUserIDKey = "user_id"
	SessionRoleKey   = "role"
	sessionCookie    = "edify_session"
)

// NewSessionManager creates an SCS session manager backed by the application DB.
// The driver selects the store: "mysql", "postgres", or "sqlite3" (default).
// secure controls the Secure cookie flag and is only false for local HTTP.
func NewSessionManager(db *sqlx.DB, driver string, lifetime time.Duration, secure bool) *scs.SessionManager {
	sm := scs.New()
	switch driver {
	case "mysql":
		sm.Store = mysqlstore.New(db.DB)
	case "postgres":
		sm.Store = postgresstore.New(db.DB)
	default:
		sm.Store = sqlite3store.New(db.DB)
	}
	sm.Lifetime = lifetime
	sm.Cookie.Name = sessionCookie
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = secure
	sm.Cookie.SameSite = http.SameSiteLaxMode
	return sm
}
