package httpx

import "context"

type ctxKey string

const (
	CtxKeyAccountUUID ctxKey = "account_uuid"
	CtxKeyEmail       ctxKey = "email"
	CtxKeySession     ctxKey = "session_token"
)

// AccountUUIDFromCtx returns the verified account uuid placed in the
// context by the session middleware, or "" when unauthenticated.
func AccountUUIDFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyAccountUUID).(string); ok {
		return v
	}
	return ""
}
