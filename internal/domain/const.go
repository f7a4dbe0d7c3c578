package domain

// Context keys the role authenticator attaches to authenticated requests.
const (
	PrincipalCtxKey = "hm-principal"
	RoleCtxKey      = "hm-role"
	TokenCtxKey     = "hm-token"
)

// SessionCookieName is the role-scoped cookie carrying the session token
// for browser clients. API clients use a bearer header instead.
func SessionCookieName(r Role) string {
	return "homestead_" + string(r) + "_session"
}
