package model

// RegisterParams is the input of the registration flow.
type RegisterParams struct {
	Username        string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
}

// LoginParams is the input of the login flow.
type LoginParams struct {
	Username string
	Password string
}

// LoginResult carries the issued token and the public part of the user.
type LoginResult struct {
	Token    string
	Username string
}
