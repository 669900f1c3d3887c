// Package render substitutes placeholder tokens in operator message templates.
package render

import (
	"strings"

	"whatsapp-bulk-sender/pkg/models"
)

const (
	TokenName    = "{name}"
	TokenPDFLink = "{pdf_link}"
)

const (
	previewName         = "João"
	previewNoAttachment = "[PDF link will appear here]"
	previewEmpty        = "Your message preview will appear here..."
)

// Render replaces every {name} with the contact name and every {pdf_link}
// with attachmentRef (empty when there is no attachment). Substituted values
// are never expanded again and unknown tokens are left as they are.
func Render(template string, c models.Contact, attachmentRef string) string {
	return strings.NewReplacer(TokenName, c.Name, TokenPDFLink, attachmentRef).Replace(template)
}

// Preview renders the template against a sample recipient for the composer.
func Preview(template, attachmentName string) string {
	if strings.TrimSpace(template) == "" {
		return previewEmpty
	}
	link := previewNoAttachment
	if attachmentName != "" {
		link = "Link for: " + attachmentName
	}
	return strings.NewReplacer(TokenName, previewName, TokenPDFLink, link).Replace(template)
}
