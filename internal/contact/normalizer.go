// Package contact turns heterogeneous source records into canonical contacts.
//
// Two sources feed it: CSV files uploaded by the operator and the remote
// clients table. Both go through the same normalizer so phone sanitizing and
// status defaults stay identical regardless of origin.
package contact

import (
	"fmt"
	"strings"

	"whatsapp-bulk-sender/pkg/models"
)

type Field string

const (
	FieldID     Field = "id"
	FieldName   Field = "name"
	FieldPhone  Field = "phone"
	FieldStatus Field = "status"
)

// FieldAlias lists the source keys for one canonical field, most preferred first.
type FieldAlias struct {
	Field Field
	Keys  []string
}

// DefaultAliases covers both naming conventions seen in the clients table.
var DefaultAliases = []FieldAlias{
	{Field: FieldID, Keys: []string{"id"}},
	{Field: FieldName, Keys: []string{"name", "nome"}},
	{Field: FieldPhone, Keys: []string{"phone", "telefone"}},
	{Field: FieldStatus, Keys: []string{"status"}},
}

type Normalizer struct {
	aliases []FieldAlias
}

// NewNormalizer builds a normalizer from an alias table. A nil table means DefaultAliases.
func NewNormalizer(aliases []FieldAlias) *Normalizer {
	if aliases == nil {
		aliases = DefaultAliases
	}
	return &Normalizer{aliases: aliases}
}

// Normalize never fails: missing fields become empty strings and a missing
// status becomes the eligibility sentinel.
func (n *Normalizer) Normalize(record map[string]any) models.Contact {
	c := models.Contact{
		ID:     n.lookup(record, FieldID),
		Name:   n.lookup(record, FieldName),
		Phone:  SanitizePhone(n.lookup(record, FieldPhone)),
		Status: n.lookup(record, FieldStatus),
	}
	if c.Status == "" {
		c.Status = models.EligibleStatus
	}
	return c
}

func (n *Normalizer) lookup(record map[string]any, f Field) string {
	for _, a := range n.aliases {
		if a.Field != f {
			continue
		}
		for _, key := range a.Keys {
			if s := stringify(record[key]); s != "" {
				return s
			}
		}
	}
	return ""
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case []byte:
		return strings.TrimSpace(string(t))
	case *string:
		if t == nil {
			return ""
		}
		return strings.TrimSpace(*t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// SanitizePhone keeps digits and a single leading '+'. It is idempotent.
func SanitizePhone(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
