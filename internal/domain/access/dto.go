package access

// Request is the JSON body of POST /access-requests.
type Request struct {
	Email          string `json:"email" validate:"required,email"`
	BusinessType   string `json:"businessType" validate:"required"`
	IntendedUse    string `json:"intendedUse" validate:"required"`
	RecaptchaToken string `json:"recaptchaToken" validate:"required"`
}
