// Package forms holds the page forms and their local validation.
package forms

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf16"

	"github.com/fabclean/fabclean-web/services/web-service/internal/api"
)

var (
	// A non-space is anything outside ASCII and Unicode whitespace, as in
	// browser regular expressions.
	emailPattern = regexp.MustCompile(`[^\s\v\p{Z}\x{FEFF}]+@[^\s\v\p{Z}\x{FEFF}]+\.[^\s\v\p{Z}\x{FEFF}]+`)
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
)

// ValidationError is a failed local check. It is shown to the user as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

type Credentials struct {
	Email    string
	Password string
}

func CredentialsFromValues(v url.Values) Credentials {
	return Credentials{
		Email:    v.Get("email"),
		Password: v.Get("password"),
	}
}

func (c Credentials) Request() api.Credentials {
	return api.Credentials{Email: c.Email, Password: c.Password}
}

type Registration struct {
	Name            string
	Phone           string
	Email           string
	Password        string
	ConfirmPassword string
}

func RegistrationFromValues(v url.Values) Registration {
	return Registration{
		Name:            v.Get("name"),
		Phone:           v.Get("phone"),
		Email:           v.Get("email"),
		Password:        v.Get("password"),
		ConfirmPassword: v.Get("confirmPassword"),
	}
}

// Validate applies the rules in order and reports the first one violated.
func (r Registration) Validate() error {
	switch {
	case strings.TrimSpace(r.Name) == "":
		return &ValidationError{Message: "Name is required"}
	case !phonePattern.MatchString(r.Phone):
		return &ValidationError{Message: "Enter a valid 10-digit phone number"}
	case !emailPattern.MatchString(r.Email):
		return &ValidationError{Message: "Enter a valid email"}
	case passwordLength(r.Password) < 6:
		return &ValidationError{Message: "Password must be at least 6 characters"}
	case r.Password != r.ConfirmPassword:
		return &ValidationError{Message: "Passwords do not match"}
	}
	return nil
}

// passwordLength counts UTF-16 code units, so characters outside the BMP
// count twice, as they do in the browser.
func passwordLength(p string) int {
	return len(utf16.Encode([]rune(p)))
}

// Request drops ConfirmPassword; the API never sees it.
func (r Registration) Request() api.SignupRequest {
	return api.SignupRequest{
		Name:     r.Name,
		Phone:    r.Phone,
		Email:    r.Email,
		Password: r.Password,
	}
}
