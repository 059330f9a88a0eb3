package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeToken(t *testing.T) {
	entryDate := time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC)

	token := EncodeToken(entryDate, "JE-000123")
	assert.NotEmpty(t, token)

	cursor, err := DecodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, entryDate, cursor.Date)
	assert.Equal(t, "JE-000123", cursor.EntryNumber)
}

func TestDecodeTokenError(t *testing.T) {
	_, err := DecodeToken("this is not base64!")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "base64 decode")

	noSeparator := base64.URLEncoding.EncodeToString([]byte("2025-05-15"))
	_, err = DecodeToken(noSeparator)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "split")

	badDate := base64.URLEncoding.EncodeToString([]byte("notadate|JE-000001"))
	_, err = DecodeToken(badDate)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "entry date parse")
}

func TestCursorAfter(t *testing.T) {
	day := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	c := Cursor{Date: day, EntryNumber: "JE-000005"}

	assert.True(t, c.After(day, "JE-000006"))
	assert.False(t, c.After(day, "JE-000005"))
	assert.False(t, c.After(day, "JE-000004"))
	assert.True(t, c.After(day.AddDate(0, 0, 1), "JE-000001"))
	assert.False(t, c.After(day.AddDate(0, 0, -1), "JE-000009"))

	wide := Cursor{Date: day, EntryNumber: "JE-999999"}
	assert.True(t, wide.After(day, "JE-1000000"))
	assert.False(t, Cursor{Date: day, EntryNumber: "JE-1000000"}.After(day, "JE-999999"))
}
