package email

import (
	"fmt"
	"html"
	"time"
)

// AccessRequestEmail builds the admin notification for a new access
// request. User-supplied fields are escaped before rendering.
func AccessRequestEmail(to, email, businessType, intendedUse string) *Message {
	htmlContent := fmt.Sprintf(`
		<h2>New Access Request</h2>
		<p><strong>Email:</strong> %s</p>
		<p><strong>Business Type:</strong> %s</p>
		<p><strong>Intended Use:</strong> %s</p>
		<p><strong>Timestamp:</strong> %s</p>
	`,
		html.EscapeString(email),
		html.EscapeString(businessType),
		html.EscapeString(intendedUse),
		time.Now().UTC().Format(time.RFC3339),
	)

	return &Message{
		To:          to,
		Subject:     "New Access Request - Document Categorizer",
		HTMLContent: htmlContent,
		TextContent: fmt.Sprintf("New access request from %s (%s): %s", email, businessType, intendedUse),
	}
}
