package cnab

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func testCatalog() TypeCatalog {
	return NewTypeCatalog([]TransactionType{
		{ID: typeID(1), Code: 1, Description: "Debit", Active: true},
		{ID: typeID(2), Code: 2, Description: "Boleto", Active: true},
		{ID: typeID(3), Code: 3, Description: "Financing", Active: true},
	})
}

// typeID returns a stable uuid for a business code, for assertions.
func typeID(code int) uuid.UUID {
	var b [16]byte
	b[15] = byte(code)
	return uuid.UUID(b)
}

// buildLine assembles a layout-conformant line from its fields.
// Each value must already be padded to its exact field width.
func buildLine(typ, date, amount, payer, card, clock, owner, store string) string {
	return typ + date + amount + payer + card + clock + owner + store
}

// validLine is the canonical well-formed fixture used across tests.
var validLine = buildLine(
	"1",
	"20230101",
	"0000000100",
	"01234567890",
	"123456789012",
	"093000",
	"OWNER NAME    ",
	"STORE NAME         ",
)

func testDecoder() Decoder {
	return Decoder{
		Catalog: testCatalog(),
		Now:     time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC),
		UserID:  "user-42",
	}
}

func TestDecode_ValidLine(t *testing.T) {
	if len(validLine) != LineLength {
		t.Fatalf("fixture length = %d, want %d", len(validLine), LineLength)
	}

	rec, err := testDecoder().Decode(validLine)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if rec.TypeCode != 1 {
		t.Errorf("TypeCode = %d, want 1", rec.TypeCode)
	}
	if rec.TypeID != typeID(1) {
		t.Errorf("TypeID = %s, want %s", rec.TypeID, typeID(1))
	}
	want := time.Date(2023, 1, 1, 9, 30, 0, 0, time.UTC)
	if !rec.OccurredAt.Equal(want) {
		t.Errorf("OccurredAt = %s, want %s", rec.OccurredAt, want)
	}
	if got := rec.Amount.StringFixed(2); got != "1.00" {
		t.Errorf("Amount = %s, want 1.00", got)
	}
	if rec.PayerID != "01234567890" {
		t.Errorf("PayerID = %q", rec.PayerID)
	}
	if rec.Card != "123456789012" {
		t.Errorf("Card = %q", rec.Card)
	}
	if rec.OwnerName != "OWNER NAME" {
		t.Errorf("OwnerName = %q, want trimmed", rec.OwnerName)
	}
	if rec.StoreName != "STORE NAME" {
		t.Errorf("StoreName = %q, want trimmed", rec.StoreName)
	}
	if rec.ImportedBy != "user-42" {
		t.Errorf("ImportedBy = %q", rec.ImportedBy)
	}
	if rec.ImportedAt.IsZero() {
		t.Error("ImportedAt not stamped")
	}
	if rec.ID == uuid.Nil {
		t.Error("ID not assigned")
	}
}

func TestDecode_AmountScaling(t *testing.T) {
	tests := []struct {
		name   string
		amount string // exactly 10 chars
		want   string
	}{
		{"one real", "0000000100", "1.00"},
		{"cents only", "0000000042", "0.42"},
		{"large value", "0142000000", "1420000.00"},
		{"zero", "0000000000", "0.00"},
	}

	dec := testDecoder()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := buildLine("1", "20230101", tt.amount, "01234567890",
				"123456789012", "093000", "OWNER NAME    ", "STORE NAME         ")
			rec, err := dec.Decode(line)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got := rec.Amount.StringFixed(2); got != tt.want {
				t.Errorf("Amount = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDecode_LineErrors(t *testing.T) {
	tests := []struct {
		name   string
		typ    string
		date   string
		amount string
		clock  string
		reason string // substring the error must contain
	}{
		{
			name: "unrecognized type code",
			typ:  "9", date: "20230101", amount: "0000000100", clock: "093000",
			reason: "unknown transaction type code 9",
		},
		{
			name: "non-numeric type code",
			typ:  "x", date: "20230101", amount: "0000000100", clock: "093000",
			reason: `invalid transaction type code "x"`,
		},
		{
			name: "non-numeric date",
			typ:  "1", date: "2023janu", amount: "0000000100", clock: "093000",
			reason: `invalid date "2023janu"`,
		},
		{
			name: "impossible calendar date",
			typ:  "1", date: "20230230", amount: "0000000100", clock: "093000",
			reason: `invalid date "20230230"`,
		},
		{
			name: "invalid time of day",
			typ:  "1", date: "20230101", amount: "0000000100", clock: "250000",
			reason: `invalid time "250000"`,
		},
		{
			name: "non-numeric amount",
			typ:  "1", date: "20230101", amount: "00000x0100", clock: "093000",
			reason: `invalid amount "00000x0100"`,
		},
		{
			name: "negative amount rejected",
			typ:  "1", date: "20230101", amount: "-000000100", clock: "093000",
			reason: `negative amount "-000000100"`,
		},
	}

	dec := testDecoder()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := buildLine(tt.typ, tt.date, tt.amount, "01234567890",
				"123456789012", tt.clock, "OWNER NAME    ", "STORE NAME         ")

			_, err := dec.Decode(line)
			var lineErr *LineError
			if !errors.As(err, &lineErr) {
				t.Fatalf("Decode() error = %v, want *LineError", err)
			}
			if !strings.Contains(lineErr.Reason, tt.reason) {
				t.Errorf("Reason = %q, want it to contain %q", lineErr.Reason, tt.reason)
			}
			if lineErr.Line != line {
				t.Errorf("Line not carried on error")
			}
		})
	}
}

func TestDecode_ShortAndBlankLines(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"whitespace only", "        "},
		{"one char short", validLine[:LineLength-1]},
		{"single field", "1"},
	}

	dec := testDecoder()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dec.Decode(tt.line)
			if !errors.Is(err, ErrShortLine) {
				t.Errorf("Decode(%q) error = %v, want ErrShortLine", tt.line, err)
			}
		})
	}
}

func TestDecode_TrailingPaddingTolerated(t *testing.T) {
	// Real files pad lines past the last field; extra characters after
	// offset 81 must not disturb decoding.
	rec, err := testDecoder().Decode(validLine + "   extra")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if rec.StoreName != "STORE NAME" {
		t.Errorf("StoreName = %q, want %q", rec.StoreName, "STORE NAME")
	}
}
