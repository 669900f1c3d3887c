package contact

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"whatsapp-bulk-sender/pkg/models"
)

const csvIDPrefix = "csv-"

type CSVIngestor struct {
	log zerolog.Logger
	// EligibleOnly drops rows whose status column is present and differs from
	// the eligibility sentinel. Off by default: every well-formed row is imported.
	EligibleOnly bool
}

func NewCSVIngestor(log zerolog.Logger, eligibleOnly bool) *CSVIngestor {
	return &CSVIngestor{log: log.With().Str("component", "csv").Logger(), EligibleOnly: eligibleOnly}
}

// ParseFile checks the upload's extension before parsing it.
func (in *CSVIngestor) ParseFile(filename string, r io.Reader) ([]models.Contact, error) {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != ".csv" {
		return nil, fmt.Errorf("%w: expected a .csv file, got %q", ErrFormat, filename)
	}
	return in.Parse(r)
}

// Parse reads delimited text. The first line is a header and is ignored. Each
// row is split on ';' when it contains one, otherwise on ','. Rows without a
// name and a phone are dropped without failing the parse. Accepted rows get
// ids csv-1, csv-2, ... in file order.
func (in *CSVIngestor) Parse(r io.Reader) ([]models.Contact, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	lines := strings.Split(string(raw), "\n")
	contacts := make([]models.Contact, 0, len(lines))
	next := 1
	for i := 1; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}

		c, err := parseRow(line)
		if err != nil {
			in.log.Debug().Int("line", i+1).Err(err).Msg("dropping row")
			continue
		}
		if in.EligibleOnly && !c.Eligible() {
			in.log.Debug().Int("line", i+1).Str("status", c.Status).Msg("dropping ineligible row")
			continue
		}

		c.ID = fmt.Sprintf("%s%d", csvIDPrefix, next)
		next++
		contacts = append(contacts, c)
	}

	in.log.Info().Int("contacts", len(contacts)).Int("lines", len(lines)).Msg("csv parsed")
	return contacts, nil
}

func parseRow(line string) (models.Contact, error) {
	sep := ","
	if strings.Contains(line, ";") {
		sep = ";"
	}
	fields := strings.Split(line, sep)
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	if len(fields) < 2 {
		return models.Contact{}, fmt.Errorf("%w: want at least 2 columns, got %d", ErrRowSkipped, len(fields))
	}
	name, phone := fields[0], SanitizePhone(fields[1])
	if name == "" || !hasDigits(phone) {
		return models.Contact{}, fmt.Errorf("%w: missing name or phone", ErrRowSkipped)
	}

	status := models.EligibleStatus
	if len(fields) > 2 && fields[2] != "" {
		status = fields[2]
	}
	return models.Contact{Name: name, Phone: phone, Status: status}, nil
}

func hasDigits(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}
