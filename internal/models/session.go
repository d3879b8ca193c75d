package models

// Session is the persisted authentication state of a store client.
type Session struct {
	Token  string         `json:"token"`
	Record map[string]any `json:"record,omitempty"`
}

// Empty reports whether the session holds no token.
func (s Session) Empty() bool {
	return s.Token == ""
}
