package database

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-bulk-sender/internal/config"
	"whatsapp-bulk-sender/internal/contact"
	"whatsapp-bulk-sender/internal/models"
	pkgmodels "whatsapp-bulk-sender/pkg/models"
)

func openTestStore(t *testing.T) *ClientStore {
	t.Helper()
	db, err := Open(&config.Config{DBDriver: "sqlite", DBPath: filepath.Join(t.TempDir(), "clients.db"), LogLevel: "error"})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewClientStore(db)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestEligibleRowsFiltersStatus(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []models.Client{
		{ID: "a", Name: "Ana", Phone: "+55 11 90000-0001", Status: "SIM"},
		{ID: "b", Nome: "Beto", Telefone: "11 90000-0002", Status: "SIM"},
		{ID: "c", Name: "Carla", Phone: "3", Status: "NAO"},
	}))

	rows, err := store.EligibleRows(ctx, pkgmodels.EligibleStatus)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	ids := []any{rows[0]["id"], rows[1]["id"]}
	assert.ElementsMatch(t, []any{"a", "b"}, ids)
}

func TestUpsertOverwrites(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []models.Client{{ID: "a", Name: "Ana", Phone: "1", Status: "SIM"}}))
	require.NoError(t, store.Upsert(ctx, []models.Client{{ID: "a", Name: "Ana Maria", Phone: "2", Status: "NAO"}}))

	rows, err := store.EligibleRows(ctx, "NAO")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ana Maria", rows[0]["name"])

	rows, err = store.EligibleRows(ctx, "SIM")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestFetcherOverStore(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []models.Client{
		{ID: "a", Name: "Ana", Phone: "+55 11 90000-0001", Status: "SIM"},
		{ID: "b", Nome: "Beto", Telefone: "11 90000-0002", Status: "SIM"},
	}))

	f := contact.NewFetcher(store, nil, contact.FallbackConfig{}, zerolog.Nop())
	got, err := f.Fetch(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []pkgmodels.Contact{
		{ID: "a", Name: "Ana", Phone: "+5511900000001", Status: "SIM"},
		{ID: "b", Name: "Beto", Phone: "11900000002", Status: "SIM"},
	}, got)
}

func TestEligibleRowsClosedDB(t *testing.T) {
	store := openTestStore(t)
	sqlDB, err := store.DB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	f := contact.NewFetcher(store, nil, contact.FallbackConfig{Enabled: true}, zerolog.Nop())
	got, err := f.Fetch(context.Background())
	assert.ErrorIs(t, err, contact.ErrSourceUnavailable)
	assert.Empty(t, got)
}

func seedCSV(t *testing.T, store *ClientStore, text string) int {
	t.Helper()
	contacts, err := contact.NewCSVIngestor(zerolog.Nop(), false).ParseFile("seed.csv", strings.NewReader(text))
	require.NoError(t, err)
	n, err := store.Seed(context.Background(), contacts)
	require.NoError(t, err)
	return n
}

func TestSeedKeepsRowsAcrossFiles(t *testing.T) {
	store := openTestStore(t)

	assert.Equal(t, 2, seedCSV(t, store, "name,phone\nAna,11 90000-0001\nBeto,11 90000-0002\n"))
	assert.Equal(t, 1, seedCSV(t, store, "name,phone\nCarla,11 90000-0003\n"))

	rows, err := store.EligibleRows(context.Background(), pkgmodels.EligibleStatus)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	names := make([]any, 0, len(rows))
	for _, r := range rows {
		names = append(names, r["name"])
		assert.False(t, strings.HasPrefix(r["id"].(string), "csv-"))
	}
	assert.ElementsMatch(t, []any{"Ana", "Beto", "Carla"}, names)
}

func TestSeedUpdatesSamePhone(t *testing.T) {
	store := openTestStore(t)

	seedCSV(t, store, "name,phone\nAna,11 90000-0001\n")
	// repeated phone inside one file keeps the last row
	assert.Equal(t, 1, seedCSV(t, store, "name,phone\nAna Maria,11 90000-0001\nAna M.,(11) 90000-0001\n"))

	rows, err := store.EligibleRows(context.Background(), pkgmodels.EligibleStatus)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ana M.", rows[0]["name"])
	assert.Equal(t, ClientID("11900000001"), rows[0]["id"])
}
