// Package lineproto implements the line-based batch protocol around the
// planner: a header line selecting the sort order and pack limits, one item
// record per line, a blank line (or EOF) terminating the batch, and the
// textual pack rendering produced for each planned batch.
package lineproto

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/eugenenazirov/pack-planner/internal/planner"
)

var (
	// ErrMalformedLine is returned when a line starts with neither a digit nor
	// one of the sort-order keywords.
	ErrMalformedLine = errors.New("line must start with a number or one of NATURAL, SHORT_TO_LONG, LONG_TO_SHORT")
	// ErrMissingHeader is returned when a batch has item lines before its
	// ORDER,maxItems,maxWeight header.
	ErrMissingHeader = errors.New("batch must start with a sort order and pack limits header")
	// ErrDuplicateHeader is returned when a header line appears after the first
	// line of a batch.
	ErrDuplicateHeader = errors.New("batch contains a second sort order and pack limits header")
	// ErrFieldCount is returned when a line has the wrong number of
	// comma-separated fields.
	ErrFieldCount = errors.New("line has the wrong number of comma-separated fields")
	// ErrInvalidField is returned when a field fails numeric parsing.
	ErrInvalidField = errors.New("field has an invalid value")
)

// Field counts for the two line shapes.
const (
	headerFieldCount = 3
	itemFieldCount   = 4
)

// Batch holds one parsed input batch, ready to hand to the planner.
type Batch struct {
	Order  planner.SortOrder
	Limits planner.PackLimits
	Items  []planner.ItemRecord
}

// Reader parses blank-line separated batches from a stream.
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader wraps r for batch-at-a-time reading.
func NewReader(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

// NextBatch reads the next batch from the stream. It returns io.EOF once the
// stream holds no further batch. A blank line terminates a batch; leading
// blank lines between batches are skipped.
func (r *Reader) NextBatch() (Batch, error) {
	var batch Batch

	sawHeader := false
	sawLine := false
	lineIndex := 0

	for r.scanner.Scan() {
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" {
			if sawLine {
				break
			}
			continue
		}
		sawLine = true

		isHeader := strings.HasPrefix(line, "NATURAL") ||
			strings.HasPrefix(line, "SHORT_TO_LONG") ||
			strings.HasPrefix(line, "LONG_TO_SHORT")
		if !isHeader && !startsWithDigit(line) {
			return Batch{}, fmt.Errorf("%w: %q", ErrMalformedLine, line)
		}

		if isHeader {
			if lineIndex > 0 {
				return Batch{}, fmt.Errorf("%w: %q on line %d", ErrDuplicateHeader, line, lineIndex)
			}
			header, err := parseHeader(line)
			if err != nil {
				return Batch{}, err
			}
			batch.Order = header.Order
			batch.Limits = header.Limits
			sawHeader = true
		} else {
			if !sawHeader {
				return Batch{}, fmt.Errorf("%w: got item line %q first", ErrMissingHeader, line)
			}
			item, err := parseItem(line)
			if err != nil {
				return Batch{}, err
			}
			batch.Items = append(batch.Items, item)
		}

		lineIndex++
	}

	if err := r.scanner.Err(); err != nil {
		return Batch{}, fmt.Errorf("read input: %w", err)
	}
	if !sawLine {
		return Batch{}, io.EOF
	}
	if !sawHeader {
		return Batch{}, ErrMissingHeader
	}

	return batch, nil
}

// ReadBatch parses a single batch from r.
func ReadBatch(r io.Reader) (Batch, error) {
	return NewReader(r).NextBatch()
}

func startsWithDigit(s string) bool {
	return s[0] >= '0' && s[0] <= '9'
}

func parseHeader(line string) (Batch, error) {
	parts := strings.Split(line, ",")
	if len(parts) != headerFieldCount {
		return Batch{}, fmt.Errorf("%w: header %q has %d fields, expected %d", ErrFieldCount, line, len(parts), headerFieldCount)
	}

	order, err := planner.ParseSortOrder(strings.TrimSpace(parts[0]))
	if err != nil {
		return Batch{}, fmt.Errorf("%w: sort order in %q: %v", ErrInvalidField, line, err)
	}

	maxItems, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Batch{}, fmt.Errorf("%w: max item count %q in %q", ErrInvalidField, parts[1], line)
	}

	maxWeight, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return Batch{}, fmt.Errorf("%w: max weight %q in %q", ErrInvalidField, parts[2], line)
	}

	return Batch{
		Order:  order,
		Limits: planner.PackLimits{MaxItems: maxItems, MaxWeight: maxWeight},
	}, nil
}

func parseItem(line string) (planner.ItemRecord, error) {
	parts := strings.Split(line, ",")
	if len(parts) != itemFieldCount {
		return planner.ItemRecord{}, fmt.Errorf("%w: item %q has %d fields, expected %d", ErrFieldCount, line, len(parts), itemFieldCount)
	}

	id, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return planner.ItemRecord{}, fmt.Errorf("%w: item id %q in %q", ErrInvalidField, parts[0], line)
	}

	length, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return planner.ItemRecord{}, fmt.Errorf("%w: item length %q in %q", ErrInvalidField, parts[1], line)
	}

	quantity, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return planner.ItemRecord{}, fmt.Errorf("%w: item quantity %q in %q", ErrInvalidField, parts[2], line)
	}

	weight, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
	if err != nil {
		return planner.ItemRecord{}, fmt.Errorf("%w: item weight %q in %q", ErrInvalidField, parts[3], line)
	}

	return planner.ItemRecord{ID: id, Length: length, Quantity: quantity, UnitWeight: weight}, nil
}
