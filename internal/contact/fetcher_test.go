package contact

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-bulk-sender/pkg/models"
)

type fakeStore struct {
	rows      []map[string]any
	err       error
	gotStatus string
}

func (f *fakeStore) EligibleRows(ctx context.Context, status string) ([]map[string]any, error) {
	f.gotStatus = status
	return f.rows, f.err
}

func TestFetchNormalizesRows(t *testing.T) {
	store := &fakeStore{rows: []map[string]any{
		{"id": "uuid-1", "name": "Ana", "phone": "+55 11 90000-0001", "status": "SIM"},
		{"id": int64(7), "nome": "Beto", "telefone": "11 90000-0002", "status": "SIM"},
		{"id": "uuid-3", "name": "Ghost", "status": "SIM"},
		{"nome": "Carla", "telefone": "3"},
	}}
	f := NewFetcher(store, nil, FallbackConfig{}, zerolog.Nop())

	got, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.EligibleStatus, store.gotStatus)
	assert.Equal(t, []models.Contact{
		{ID: "uuid-1", Name: "Ana", Phone: "+5511900000001", Status: "SIM"},
		{ID: "7", Name: "Beto", Phone: "11900000002", Status: "SIM"},
		{ID: "remote-4", Name: "Carla", Phone: "3", Status: "SIM"},
	}, got)
}

func TestFetchSourceUnavailable(t *testing.T) {
	f := NewFetcher(&fakeStore{err: errors.New("connection refused")}, nil, FallbackConfig{Enabled: true}, zerolog.Nop())

	got, err := f.Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFetchEmptyWithoutFallback(t *testing.T) {
	f := NewFetcher(&fakeStore{}, nil, FallbackConfig{Enabled: false, Size: 5}, zerolog.Nop())

	got, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFetchEmptyWithFallback(t *testing.T) {
	phone := regexp.MustCompile(`^\+55119\d{8}$`)

	for _, size := range []int{0, 3} {
		f := NewFetcher(&fakeStore{}, nil, FallbackConfig{Enabled: true, Size: size}, zerolog.Nop())

		got, err := f.Fetch(context.Background())
		require.NoError(t, err)

		want := size
		if want == 0 {
			want = defaultFallbackSize
		}
		require.Len(t, got, want)
		for i, c := range got {
			assert.Equal(t, "dev-"+strconv.Itoa(i+1), c.ID)
			assert.True(t, c.Eligible())
			assert.Regexp(t, phone, c.Phone)
		}
	}
}
