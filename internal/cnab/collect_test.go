package cnab

import (
	"errors"
	"strings"
	"testing"
)

// secondLine differs from validLine in type, amount and store.
var secondLine = buildLine(
	"2",
	"20230102",
	"0000025050",
	"09876543210",
	"210987654321",
	"154500",
	"JANE DOE      ",
	"PADARIA CENTRAL    ",
)

func TestCollect_FileOrderPreserved(t *testing.T) {
	input := strings.Join([]string{validLine, secondLine}, "\n")

	batch, err := Collect(strings.NewReader(input), testDecoder())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if batch.LinesRead != 2 {
		t.Errorf("LinesRead = %d, want 2", batch.LinesRead)
	}
	if len(batch.Records) != 2 {
		t.Fatalf("Records = %d, want 2", len(batch.Records))
	}
	if len(batch.Errors) != 0 {
		t.Errorf("Errors = %d, want 0", len(batch.Errors))
	}
	if batch.Records[0].TypeCode != 1 || batch.Records[1].TypeCode != 2 {
		t.Errorf("record order = [%d %d], want file order [1 2]",
			batch.Records[0].TypeCode, batch.Records[1].TypeCode)
	}
	if got := batch.Records[1].Amount.StringFixed(2); got != "250.50" {
		t.Errorf("second record Amount = %s, want 250.50", got)
	}
}

func TestCollect_IsolatesFailedLines(t *testing.T) {
	badType := buildLine("9", "20230101", "0000000100", "01234567890",
		"123456789012", "093000", "OWNER NAME    ", "STORE NAME         ")
	badDate := buildLine("1", "2023xx01", "0000000100", "01234567890",
		"123456789012", "093000", "OWNER NAME    ", "STORE NAME         ")

	input := strings.Join([]string{validLine, badType, badDate, secondLine}, "\n")

	batch, err := Collect(strings.NewReader(input), testDecoder())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if batch.LinesRead != 4 {
		t.Errorf("LinesRead = %d, want 4", batch.LinesRead)
	}
	if len(batch.Records) != 2 {
		t.Errorf("Records = %d, want 2", len(batch.Records))
	}
	if len(batch.Errors) != 2 {
		t.Fatalf("Errors = %d, want 2", len(batch.Errors))
	}
	// Errors keep file order too.
	if !strings.Contains(batch.Errors[0].Reason, "unknown transaction type") {
		t.Errorf("first error = %q, want type-code failure first", batch.Errors[0].Reason)
	}
	if !strings.Contains(batch.Errors[1].Reason, "invalid date") {
		t.Errorf("second error = %q, want date failure second", batch.Errors[1].Reason)
	}
}

func TestCollect_SkipsShortAndBlankLines(t *testing.T) {
	input := strings.Join([]string{"", "too short", validLine, "   "}, "\n")

	batch, err := Collect(strings.NewReader(input), testDecoder())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if batch.LinesRead != 4 {
		t.Errorf("LinesRead = %d, want 4", batch.LinesRead)
	}
	if len(batch.Records) != 1 {
		t.Errorf("Records = %d, want 1", len(batch.Records))
	}
	if len(batch.Errors) != 0 {
		t.Errorf("Errors = %d, want 0 (short lines are not errors)", len(batch.Errors))
	}
	if batch.Skipped() != 3 {
		t.Errorf("Skipped() = %d, want 3", batch.Skipped())
	}
}

func TestCollect_EmptyStream(t *testing.T) {
	batch, err := Collect(strings.NewReader(""), testDecoder())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if batch.LinesRead != 0 || len(batch.Records) != 0 || len(batch.Errors) != 0 {
		t.Errorf("empty stream produced batch %+v, want empty", batch)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestCollect_ReaderFault(t *testing.T) {
	_, err := Collect(failingReader{}, testDecoder())
	if err == nil {
		t.Fatal("Collect() error = nil, want reader fault")
	}
	if !strings.Contains(err.Error(), "read upload stream") {
		t.Errorf("error = %v, want wrapped stream failure", err)
	}
}
