package contact

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/rs/zerolog"

	"whatsapp-bulk-sender/pkg/models"
)

// Store is the read side of the remote clients table. Rows come back raw so
// either field naming convention reaches the normalizer intact.
type Store interface {
	EligibleRows(ctx context.Context, status string) ([]map[string]any, error)
}

// FallbackConfig gates the development-only placeholder batch used when the
// store has no eligible rows. Never enable it in production.
type FallbackConfig struct {
	Enabled bool
	Size    int
}

const defaultFallbackSize = 15

type Fetcher struct {
	store      Store
	normalizer *Normalizer
	fallback   FallbackConfig
	log        zerolog.Logger
}

func NewFetcher(store Store, normalizer *Normalizer, fallback FallbackConfig, log zerolog.Logger) *Fetcher {
	if normalizer == nil {
		normalizer = NewNormalizer(nil)
	}
	if fallback.Size <= 0 {
		fallback.Size = defaultFallbackSize
	}
	return &Fetcher{
		store:      store,
		normalizer: normalizer,
		fallback:   fallback,
		log:        log.With().Str("component", "fetcher").Logger(),
	}
}

// Fetch returns the eligible contacts. On a query failure it returns an empty,
// non-nil slice together with an error wrapping ErrSourceUnavailable.
func (f *Fetcher) Fetch(ctx context.Context) ([]models.Contact, error) {
	rows, err := f.store.EligibleRows(ctx, models.EligibleStatus)
	if err != nil {
		f.log.Error().Err(err).Msg("failed to fetch eligible contacts")
		return []models.Contact{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	if len(rows) == 0 {
		if !f.fallback.Enabled {
			f.log.Info().Msg("no eligible contacts found")
			return []models.Contact{}, nil
		}
		f.log.Warn().Int("size", f.fallback.Size).Msg("no eligible contacts found; using development placeholders")
		return placeholderContacts(f.fallback.Size), nil
	}

	contacts := make([]models.Contact, 0, len(rows))
	for i, row := range rows {
		c := f.normalizer.Normalize(row)
		if !hasDigits(c.Phone) {
			f.log.Debug().Int("row", i).Str("id", c.ID).Msg("dropping contact without phone")
			continue
		}
		if c.ID == "" {
			c.ID = fmt.Sprintf("remote-%d", i+1)
		}
		contacts = append(contacts, c)
	}

	f.log.Info().Int("rows", len(rows)).Int("contacts", len(contacts)).Msg("eligible contacts fetched")
	return contacts, nil
}

func placeholderContacts(n int) []models.Contact {
	out := make([]models.Contact, n)
	for i := range out {
		out[i] = models.Contact{
			ID:     fmt.Sprintf("dev-%d", i+1),
			Name:   fmt.Sprintf("Contact %d", i+1),
			Phone:  fmt.Sprintf("+55119%08d", 10000000+rand.IntN(90000000)),
			Status: models.EligibleStatus,
		}
	}
	return out
}
