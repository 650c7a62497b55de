package cnab

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrShortLine reports a line too short (or blank) to carry the layout.
// Such lines are skipped entirely: no record, no import error.
var ErrShortLine = errors.New("line shorter than layout")

// LineError describes why a single line could not be decoded.
// It is recoverable at line granularity; the batch continues past it.
type LineError struct {
	Line   string
	Reason string
}

func (e *LineError) Error() string {
	return e.Reason
}

// Decoder converts one CNAB line into a Record. The catalog is an
// immutable value, so a Decoder is safe to share across lines.
type Decoder struct {
	Catalog TypeCatalog
	Now     time.Time // import timestamp stamped on every record
	UserID  string    // importing user stamped on every record
}

// Decode decodes a single line. It returns ErrShortLine for lines that
// do not reach LineLength characters after trimming trailing whitespace
// to nothing (blank lines), and a *LineError for any field that fails
// to parse or resolve. A failed line never affects its neighbours.
func (d Decoder) Decode(line string) (Record, error) {
	if strings.TrimSpace(line) == "" || len(line) < LineLength {
		return Record{}, ErrShortLine
	}

	lineErr := func(format string, args ...any) (Record, error) {
		return Record{}, &LineError{Line: line, Reason: fmt.Sprintf(format, args...)}
	}

	rawType := field(line, offType, lenType)
	code, err := strconv.Atoi(rawType)
	if err != nil {
		return lineErr("invalid transaction type code %q", rawType)
	}

	typeID, ok := d.Catalog.Resolve(code)
	if !ok {
		return lineErr("unknown transaction type code %d", code)
	}

	rawDate := field(line, offDate, lenDate)
	date, err := time.Parse(dateLayout, rawDate)
	if err != nil {
		return lineErr("invalid date %q", rawDate)
	}

	rawTime := field(line, offTime, lenTime)
	clock, err := time.Parse(timeLayout, rawTime)
	if err != nil {
		return lineErr("invalid time %q", rawTime)
	}

	rawAmount := field(line, offAmount, lenAmount)
	cents, err := strconv.ParseInt(rawAmount, 10, 64)
	if err != nil {
		return lineErr("invalid amount %q", rawAmount)
	}
	if cents < 0 {
		// The layout has no sign position; a minus here means corruption.
		return lineErr("negative amount %q", rawAmount)
	}

	return Record{
		ID:       uuid.New(),
		TypeID:   typeID,
		TypeCode: code,
		OccurredAt: time.Date(
			date.Year(), date.Month(), date.Day(),
			clock.Hour(), clock.Minute(), clock.Second(), 0, time.UTC,
		),
		Amount:     decimal.New(cents, -2),
		PayerID:    field(line, offPayer, lenPayer),
		Card:       field(line, offCard, lenCard),
		OwnerName:  field(line, offOwner, lenOwner),
		StoreName:  field(line, offStore, lenStore),
		ImportedAt: d.Now,
		ImportedBy: d.UserID,
	}, nil
}

// field extracts the substring at [off, off+n) trimmed of surrounding
// whitespace. Callers guarantee the line is at least LineLength long.
func field(line string, off, n int) string {
	return strings.TrimSpace(line[off : off+n])
}
