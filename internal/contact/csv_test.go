package contact

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-bulk-sender/pkg/models"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestParseExample(t *testing.T) {
	in := NewCSVIngestor(zerolog.Nop(), false)

	got, err := in.Parse(strings.NewReader("name,phone\nAna,11 98888-7777\nBeto,+55 11 97777-6666\n"))
	require.NoError(t, err)
	assert.Equal(t, []models.Contact{
		{ID: "csv-1", Name: "Ana", Phone: "11988887777", Status: "SIM"},
		{ID: "csv-2", Name: "Beto", Phone: "+5511977776666", Status: "SIM"},
	}, got)
}

func TestParseDelimiterPerRow(t *testing.T) {
	in := NewCSVIngestor(zerolog.Nop(), false)

	got, err := in.Parse(strings.NewReader("nome;telefone;status\r\nAna;11 1111-1111;NAO\r\nBeto,2222,SIM\r\nCarla ; 3333 ;\r\n"))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, models.Contact{ID: "csv-1", Name: "Ana", Phone: "1111111111", Status: "NAO"}, got[0])
	assert.Equal(t, models.Contact{ID: "csv-2", Name: "Beto", Phone: "2222", Status: "SIM"}, got[1])
	assert.Equal(t, models.Contact{ID: "csv-3", Name: "Carla", Phone: "3333", Status: "SIM"}, got[2])
}

func TestParseSkippedRowsKeepIDsContiguous(t *testing.T) {
	in := NewCSVIngestor(zerolog.Nop(), false)

	text := strings.Join([]string{
		"name,phone",
		"Ana,111",
		"onlyname",
		"",
		"   ",
		",222",
		"NoPhone,",
		"Letters,abc",
		"Beto,333",
	}, "\n")
	got, err := in.Parse(strings.NewReader(text))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "csv-1", got[0].ID)
	assert.Equal(t, "Ana", got[0].Name)
	assert.Equal(t, "csv-2", got[1].ID)
	assert.Equal(t, "Beto", got[1].Name)
}

func TestParseNRowsYieldsNContacts(t *testing.T) {
	in := NewCSVIngestor(zerolog.Nop(), false)

	var b strings.Builder
	b.WriteString("name,phone\n")
	for i := 0; i < 25; i++ {
		b.WriteString("Someone,+1 555 0100\n")
	}
	got, err := in.Parse(strings.NewReader(b.String()))
	require.NoError(t, err)
	require.Len(t, got, 25)
	for i, c := range got {
		assert.Equal(t, "csv-"+strconv.Itoa(i+1), c.ID)
	}
}

func TestParseHeaderOnlyAndEmpty(t *testing.T) {
	in := NewCSVIngestor(zerolog.Nop(), false)

	got, err := in.Parse(strings.NewReader("name,phone"))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = in.Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseEligibleOnly(t *testing.T) {
	in := NewCSVIngestor(zerolog.Nop(), true)

	got, err := in.Parse(strings.NewReader("name,phone,status\nAna,1,NAO\nBeto,2\nCarla,3,SIM\n"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.Contact{ID: "csv-1", Name: "Beto", Phone: "2", Status: "SIM"}, got[0])
	assert.Equal(t, models.Contact{ID: "csv-2", Name: "Carla", Phone: "3", Status: "SIM"}, got[1])
}

func TestParseReadFailure(t *testing.T) {
	in := NewCSVIngestor(zerolog.Nop(), false)

	_, err := in.Parse(failingReader{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestParseFileRejectsExtension(t *testing.T) {
	in := NewCSVIngestor(zerolog.Nop(), false)

	_, err := in.ParseFile("contacts.pdf", strings.NewReader("name,phone\nAna,1\n"))
	assert.ErrorIs(t, err, ErrFormat)

	got, err := in.ParseFile("Contacts.CSV", strings.NewReader("name,phone\nAna,1\n"))
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
