package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	templateVerifyAccount = "verify_account.html"
	templatePasswordReset = "password_reset.html"
)

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type verifyAccountData struct {
	FirstName        string
	VerificationLink string
	ExpireMinutes    int
}

type passwordResetData struct {
	FirstName     string
	OTP           int
	ExpireMinutes int
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
