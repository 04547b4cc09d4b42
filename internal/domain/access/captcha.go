package access

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const siteVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// CaptchaVerifier checks a client-side captcha token.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token string) (bool, error)
}

// RecaptchaVerifier verifies tokens against Google reCAPTCHA.
type RecaptchaVerifier struct {
	secret     string
	httpClient *http.Client
}

func NewRecaptchaVerifier(secret string) *RecaptchaVerifier {
	return &RecaptchaVerifier{
		secret: secret,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Verify posts the token to the siteverify endpoint.
func (v *RecaptchaVerifier) Verify(ctx context.Context, token string) (bool, error) {
	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, "POST", siteVerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to verify captcha: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("failed to decode captcha response: %w", err)
	}

	return result.Success, nil
}
