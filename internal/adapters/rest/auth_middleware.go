package rest

import (
	"net/http"
	"strings"

	"github.com/goncalofm90/foodi3/internal/contextkeys"
	"github.com/goncalofm90/foodi3/internal/core/port"
)

// SessionCookieName carries the credential for clients that cannot set
// headers, such as EventSource.
const SessionCookieName = "foodi3_session"

// Authenticator resolves the caller through the identity provider.
type Authenticator struct {
	identity port.IdentityProviderPort
}

func NewAuthenticator(identity port.IdentityProviderPort) *Authenticator {
	return &Authenticator{identity: identity}
}

func credentialFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

// authenticate returns the request with the user attached, or nil when the
// caller is anonymous or the credential was rejected.
func (a *Authenticator) authenticate(r *http.Request) *http.Request {
	credential := credentialFrom(r)
	if credential == "" {
		return nil
	}
	logger := contextkeys.LoggerFromContext(r.Context())
	user, err := a.identity.CurrentUser(r.Context(), credential)
	if err != nil || user == nil {
		logger.Debug("Credential rejected", port.Fields{"reason": errString(err)})
		return nil
	}

	ctx := contextkeys.ContextWithUser(r.Context(), user)
	ctx = contextkeys.ContextWithLogger(ctx, logger.WithFields(port.Fields{"user_id": user.ID}))
	return r.WithContext(ctx)
}

// RequireAuth answers 401 with a sign-in action for anonymous callers.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authed := a.authenticate(r)
		if authed == nil {
			RespondWithJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Sign in required", Action: "sign_in"})
			return
		}
		next.ServeHTTP(w, authed)
	})
}

// OptionalAuth attaches the user when the credential is valid and lets
// anonymous callers through otherwise.
func (a *Authenticator) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if authed := a.authenticate(r); authed != nil {
			r = authed
		}
		next.ServeHTTP(w, r)
	})
}

// userIDFrom returns "" for anonymous requests.
func userIDFrom(r *http.Request) string {
	if user := contextkeys.UserFromContext(r.Context()); user != nil {
		return user.ID
	}
	return ""
}

func errString(err error) string {
	if err == nil {
		return "no user"
	}
	return err.Error()
}
