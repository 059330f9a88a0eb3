package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/spice_ledger/internal/core/domain"
)

const dateFormat = time.DateOnly

// Cursor identifies the last journal entry of a page by its ledger sort key.
type Cursor struct {
	Date        time.Time
	EntryNumber string
}

// After reports whether an entry with the given key sorts strictly after the cursor.
func (c Cursor) After(date time.Time, entryNumber string) bool {
	if !date.Equal(c.Date) {
		return date.After(c.Date)
	}
	return domain.CompareEntryNumbers(entryNumber, c.EntryNumber) > 0
}

// EncodeToken creates a base64 encoded token from an entry date and entry number.
func EncodeToken(entryDate time.Time, entryNumber string) string {
	tokenStr := fmt.Sprintf("%s|%s", entryDate.Format(dateFormat), entryNumber)
	return base64.URLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeToken parses a token produced by EncodeToken.
func DecodeToken(token string) (Cursor, error) {
	decodedBytes, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		return Cursor{}, fmt.Errorf("invalid pagination token format (split)")
	}

	entryDate, err := time.Parse(dateFormat, parts[0])
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (entry date parse): %w", err)
	}

	return Cursor{Date: entryDate, EntryNumber: parts[1]}, nil
}
