package selection

import (
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplaceSelectsAll(t *testing.T) {
	s := New()
	s.Replace([]string{"csv-1", "csv-2", "csv-3"})

	assert.Equal(t, []string{"csv-1", "csv-2", "csv-3"}, s.IDs())
	assert.True(t, s.AllSelected())
}

func TestToggleAndClear(t *testing.T) {
	s := New()
	s.Replace([]string{"a", "b", "c"})

	assert.True(t, s.Toggle("b", false))
	assert.Equal(t, []string{"a", "c"}, s.IDs())
	assert.False(t, s.AllSelected())

	assert.True(t, s.Toggle("b", true))
	assert.Equal(t, []string{"a", "b", "c"}, s.IDs())

	s.Clear()
	assert.Empty(t, s.IDs())
	assert.Equal(t, 0, s.Len())

	s.SelectAll()
	assert.Equal(t, 3, s.Len())
}

func TestToggleUnknownIDIsNoop(t *testing.T) {
	s := New()
	s.Replace([]string{"a"})
	s.Clear()

	assert.False(t, s.Toggle("zzz", true))
	assert.False(t, s.Contains("zzz"))
	assert.Empty(t, s.IDs())
}

func TestReplacePrunesStaleIDs(t *testing.T) {
	s := New()
	s.Replace([]string{"csv-1", "csv-2"})
	s.Toggle("csv-2", false)

	s.Replace([]string{"7", "8"})
	assert.False(t, s.Contains("csv-1"))
	assert.Equal(t, []string{"7", "8"}, s.IDs())

	s.Replace(nil)
	assert.Empty(t, s.IDs())
	assert.False(t, s.AllSelected())
}

func TestReplaceDropsDuplicates(t *testing.T) {
	s := New()
	s.Replace([]string{"a", "b", "a"})
	assert.Equal(t, []string{"a", "b"}, s.IDs())
}

// Random operation sequences must never leave an id selected that is not in the batch.
func TestSelectionStaysWithinBatch(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	s := New()
	var batch []string

	for step := 0; step < 2000; step++ {
		switch r.IntN(4) {
		case 0:
			batch = batch[:0]
			for i := 0; i < r.IntN(6); i++ {
				batch = append(batch, strconv.Itoa(r.IntN(10)))
			}
			s.Replace(batch)
		case 1:
			s.SelectAll()
		case 2:
			s.Clear()
		case 3:
			s.Toggle(strconv.Itoa(r.IntN(10)), r.IntN(2) == 0)
		}

		inBatch := map[string]bool{}
		for _, id := range batch {
			inBatch[id] = true
		}
		for _, id := range s.IDs() {
			if !inBatch[id] {
				t.Fatalf("step %d: selected id %q not in batch %v", step, id, batch)
			}
		}
	}
}
