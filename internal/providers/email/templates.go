package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const (
	TemplateVerifyEmail        = "verify_email"
	TemplateResetPassword      = "reset_password"
	TemplateInviteMember       = "invite_member"
	TemplateInvitationAccepted = "invitation_accepted"
	TemplateInvitationRejected = "invitation_rejected"
	TemplateJoinRequest        = "join_request"
	TemplateJoinAccepted       = "join_accepted"
	TemplateJoinRejected       = "join_rejected"
)

// Render executes the named template into an HTML body.
func Render(name string, data map[string]any) (string, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, name+".html", data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return body.String(), nil
}
