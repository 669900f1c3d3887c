package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"whatsapp-bulk-sender/pkg/models"
)

func TestRender(t *testing.T) {
	ana := models.Contact{Name: "Ana"}

	tests := []struct {
		name     string
		template string
		contact  models.Contact
		link     string
		want     string
	}{
		{"global replacement", "Hi {name}, {name} again, link: {pdf_link}", ana, "L", "Hi Ana, Ana again, link: L"},
		{"no attachment", "Doc: {pdf_link}.", ana, "", "Doc: ."},
		{"no tokens", "plain text", ana, "L", "plain text"},
		{"unknown token kept", "{name} {phone} {Name}", ana, "", "Ana {phone} {Name}"},
		{"empty name", "Oi {name}!", models.Contact{}, "", "Oi !"},
		{"no recursive expansion", "{name}", models.Contact{Name: "{pdf_link}"}, "L", "{pdf_link}"},
		{"adjacent tokens", "{name}{name}{pdf_link}", ana, "x", "AnaAnax"},
		{"empty template", "", ana, "L", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.template, tt.contact, tt.link))
		})
	}
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "Oi João, veja [PDF link will appear here]", Preview("Oi {name}, veja {pdf_link}", ""))
	assert.Equal(t, "Link for: boleto.pdf", Preview("{pdf_link}", "boleto.pdf"))
	assert.Equal(t, "Your message preview will appear here...", Preview("   ", "x.pdf"))
}
