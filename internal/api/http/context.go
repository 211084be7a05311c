package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"costume-rental-backend/internal/config"
	"costume-rental-backend/internal/domain"
	"costume-rental-backend/internal/logger"
	"costume-rental-backend/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const (
	ActorHeader     = "X-Actor-ID"
	RequestIDHeader = "X-Request-ID"
)

type actorKey struct{}

var errMissingActor = errors.New("X-Actor-ID header is required")

// parseActorID extracts the acting user id from the X-Actor-ID header.
func parseActorID(r *http.Request) (int32, error) {
	raw := r.Header.Get(ActorHeader)
	if raw == "" {
		return 0, errMissingActor
	}
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, errors.New("X-Actor-ID must be a positive integer")
	}
	return int32(id), nil
}

// ActorFromContext returns the actor id stored by actorMiddleware.
func ActorFromContext(ctx context.Context) (int32, bool) {
	id, ok := ctx.Value(actorKey{}).(int32)
	return id, ok
}

// actorMiddleware enforces the route's access level. On actor routes the id
// must also belong to an active user when a directory is configured.
func actorMiddleware(actors service.ActorDirectory) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name := ""
			if route := mux.CurrentRoute(r); route != nil {
				name = route.GetName()
			}
			required := config.GetAccessLevel(name) == config.AccessActor

			id, err := parseActorID(r)
			if err != nil {
				if required {
					writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if required && actors != nil {
				ok, err := actors.Exists(r.Context(), id)
				if err != nil {
					writeError(w, r, domain.PersistenceFailure("look up actor", err))
					return
				}
				if !ok {
					writeError(w, r, domain.Errorf(domain.ErrActorNotFound, "actor %d not found", id))
					return
				}
			}

			ctx := context.WithValue(r.Context(), actorKey{}, id)
			ctx = logger.NewContext(ctx, logger.FromContext(ctx).With("actor_id", id))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requestIDMiddleware tags the request logger with the caller's request id or
// a new one, and echoes it back.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	})
}

// recoverMiddleware turns a handler panic into a 500.
func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				logger.FromContext(r.Context()).Error("Handler panicked", "panic", p, "path", r.URL.Path)
				writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
