package middleware

import (
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/pthm/hxblog/internal/logger"
	"github.com/pthm/hxblog/lib/cms"
	"github.com/pthm/hxblog/lib/encoding"
)

// SessionCookie is the name of the session cookie.
const SessionCookie = "hxblog_session"

// Session attribute names.
const (
	AttrCSRF      = "_csrf"
	AttrSessionID = "sessionId"
	AttrRequestID = "requestId"
)

// Session is the state sealed into the session cookie.
type Session struct {
	ID        string `msgpack:"id"`
	CSRFToken string `msgpack:"csrf"`
}

// GetToken implements csrf.TokenGetter.
func (s *Session) GetToken() (string, error) { return s.CSRFToken, nil }

// Sessions restores the session from its encrypted cookie, or starts a new
// one, and exposes it to views as CMS request and session attributes. A
// non-empty fixedToken replaces the generated per-session CSRF token.
//
// The request-scoped logger gains a session_id field, so mount Sessions
// after RequestLogger.
func Sessions(enc *encoding.Encoder, fixedToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			sess, ok := readSession(r, enc)
			if !ok || (fixedToken != "" && sess.CSRFToken != fixedToken) {
				sess = &Session{ID: uuid.NewString(), CSRFToken: fixedToken}
				if sess.CSRFToken == "" {
					sess.CSRFToken = uuid.NewString()
				}
				if err := writeSession(w, r, enc, sess); err != nil {
					logger.FromContext(ctx).WarnContext(ctx, "session cookie not written",
						slog.String("error", err.Error()),
					)
				}
			}

			ctx = logger.WithSessionID(ctx, sess.ID)
			ctx = logger.NewContext(ctx, logger.FromContext(ctx).With(slog.String("session_id", sess.ID)))
			ctx = cms.WithAttributes(ctx,
				cms.Attributes{AttrRequestID: chimw.GetReqID(ctx)},
				cms.Attributes{AttrCSRF: sess, AttrSessionID: sess.ID},
			)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func readSession(r *http.Request, enc *encoding.Encoder) (*Session, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return nil, false
	}
	var sess Session
	if err := enc.Decode(c.Value, true, &sess); err != nil {
		return nil, false
	}
	if sess.ID == "" || sess.CSRFToken == "" {
		return nil, false
	}
	return &sess, true
}

func writeSession(w http.ResponseWriter, r *http.Request, enc *encoding.Encoder, sess *Session) error {
	value, err := enc.Encode(sess, true)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
