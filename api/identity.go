/*
identity.go - Per-request actor identity

PURPOSE:
  Extracts the acting employee's identity from request headers and puts
  it on the request context. Every /api handler reads the actor from
  there.

HEADERS:
  X-Employee-Id    required; the acting employee's id
  X-Employee-Role  optional; "admin" elevates, anything else is "normal"

SECURITY NOTE:
  The engine trusts these headers. They are expected to be set by an
  authenticating reverse proxy; the service itself performs no
  authentication, only authorization (ownership and role checks in the
  engine).

SEE ALSO:
  - handlers.go: actorFrom(r) callers
*/
package api

import (
	"context"
	"net/http"

	"github.com/tempus/worktime-engine/engine"
)

const (
	headerEmployeeID   = "X-Employee-Id"
	headerEmployeeRole = "X-Employee-Role"
)

type contextKey struct{ name string }

var actorKey = contextKey{"actor"}

// Identity is the middleware that resolves the actor. Requests without
// an X-Employee-Id header are rejected with 401.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerEmployeeID)
		if id == "" {
			writeError(w, http.StatusUnauthorized, "Missing "+headerEmployeeID+" header", nil)
			return
		}

		role := engine.RoleNormal
		if r.Header.Get(headerEmployeeRole) == string(engine.RoleAdmin) {
			role = engine.RoleAdmin
		}

		actor := engine.Actor{ID: engine.EmployeeID(id), Role: role}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey, actor)))
	})
}

// actorFrom returns the actor placed on the context by Identity. The
// zero Actor is returned only when the middleware did not run (tests
// hitting handlers directly).
func actorFrom(r *http.Request) engine.Actor {
	actor, _ := r.Context().Value(actorKey).(engine.Actor)
	return actor
}
