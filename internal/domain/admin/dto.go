package admin

// LoginRequest is the admin login body.
type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token string `json:"token"`
}

// CreateAccountRequest provisions a new credit account.
type CreateAccountRequest struct {
	Code    string `json:"code" validate:"required,min=4,max=64"`
	Credits int    `json:"credits" validate:"gte=0"`
}

// GrantRequest adds credits to an existing account.
type GrantRequest struct {
	Amount int `json:"amount" validate:"required,gte=1"`
}
