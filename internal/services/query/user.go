package query

import "github.com/File-Sharing-BondBridg/Image-Service/internal/backend"

// IsUserLoggedIn reports whether store holds an unexpired session.
func IsUserLoggedIn(store *backend.Client) bool {
	return store != nil && store.AuthStore().IsValid()
}

// CurrentUsername returns the username of the logged in user, if any.
func CurrentUsername(store *backend.Client) string {
	if !IsUserLoggedIn(store) {
		return ""
	}
	return store.AuthStore().Username()
}
