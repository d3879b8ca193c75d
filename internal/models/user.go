package models

// AccountTypeFree is assigned to every new signup.
const AccountTypeFree = "Free"

// User is a record of the users auth collection.
type User struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	EmailVisibility bool   `json:"emailVisibility"`
	Verified        bool   `json:"verified"`
	AccountType     string `json:"accountType"`
	Created         string `json:"created"`
}

// NewUser is the signup payload.
type NewUser struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	EmailVisibility bool   `json:"emailVisibility"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
	AccountType     string `json:"accountType"`
}
