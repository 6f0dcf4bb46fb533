package auth

// Cookie names for the two credential carriers.  Both cookies are httpOnly,
// same-site strict and domain-wide; the access cookie lives 15 minutes, the
// refresh cookie 7 days.
const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
)
