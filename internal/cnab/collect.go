package cnab

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// Batch is the outcome of collecting one file: records and errors both in
// file order, plus the total number of lines seen for audit purposes.
type Batch struct {
	Records   []Record
	Errors    []LineError
	LinesRead int
}

// Skipped returns the number of lines that were neither decoded nor
// reported as errors (blank or shorter than the layout).
func (b Batch) Skipped() int {
	return b.LinesRead - len(b.Records) - len(b.Errors)
}

// Collect decodes every line of r with dec, isolating failures per line.
// A line that fails to decode contributes one LineError and nothing else;
// decoding always continues to the next line. Only a reader fault aborts
// collection, returning the partial batch alongside the error.
func Collect(r io.Reader, dec Decoder) (Batch, error) {
	var batch Batch

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		batch.LinesRead++

		rec, err := dec.Decode(scanner.Text())
		if err != nil {
			if errors.Is(err, ErrShortLine) {
				continue
			}
			var lineErr *LineError
			if errors.As(err, &lineErr) {
				batch.Errors = append(batch.Errors, *lineErr)
				continue
			}
			// Decode only produces the two error kinds above.
			return batch, fmt.Errorf("decode line %d: %w", batch.LinesRead, err)
		}
		batch.Records = append(batch.Records, rec)
	}

	if err := scanner.Err(); err != nil {
		return batch, fmt.Errorf("read upload stream: %w", err)
	}
	return batch, nil
}
