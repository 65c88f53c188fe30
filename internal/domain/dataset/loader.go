package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Attempt is one (delimiter, encoding) combination the loader tries.
type Attempt struct {
	Delimiter rune
	Encoding  string
}

func (a Attempt) String() string {
	return delimiterName(a.Delimiter) + "/" + a.Encoding
}

// DefaultAttempts is the fixed priority order.
var DefaultAttempts = []Attempt{
	{Delimiter: ';', Encoding: EncodingUTF8},
	{Delimiter: ',', Encoding: EncodingLatin1},
	{Delimiter: '\t', Encoding: EncodingUTF8},
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func Load(r io.Reader) (*RawTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return LoadBytes(data)
}

func LoadBytes(data []byte) (*RawTable, error) {
	return LoadWithAttempts(data, DefaultAttempts)
}

// LoadWithAttempts accepts the first attempt that parses. When none does, the
// returned error wraps ErrUnreadable and names every combination tried.
func LoadWithAttempts(data []byte, attempts []Attempt) (*RawTable, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyInput
	}
	names := make([]string, 0, len(attempts))
	var failures []error
	for _, attempt := range attempts {
		names = append(names, attempt.String())
		table, err := parse(data, attempt)
		if err == nil {
			return table, nil
		}
		failures = append(failures, fmt.Errorf("%s: %w", attempt, err))
	}
	return nil, &LoadError{Attempts: names, Cause: errors.Join(failures...)}
}

func parse(data []byte, attempt Attempt) (*RawTable, error) {
	text, err := decode(data, attempt.Encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = attempt.Delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}

	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		header[i] = strings.TrimSpace(name)
	}
	if len(header) < 2 {
		return nil, ErrSingleColumn
	}

	// Short rows are padded to the header width; only wider rows are rejected.
	rows := make([][]string, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) > len(header) {
			return nil, fmt.Errorf("line %d: %w", i+2, ErrWideRow)
		}
		if len(record) < len(header) {
			padded := make([]string, len(header))
			copy(padded, record)
			record = padded
		}
		rows = append(rows, record)
	}
	return &RawTable{
		Header:    header,
		Rows:      rows,
		Delimiter: attempt.Delimiter,
		Encoding:  attempt.Encoding,
	}, nil
}

func decode(data []byte, encoding string) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	switch encoding {
	case EncodingUTF8:
		if !utf8.Valid(data) {
			return "", ErrInvalidUTF8
		}
		return string(data), nil
	case EncodingLatin1:
		// Already-valid UTF-8 would only turn into mojibake through Latin-1.
		if utf8.Valid(data) {
			return string(data), nil
		}
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return "", err
		}
		return string(decoded), nil
	}
	return "", fmt.Errorf("unsupported encoding %q", encoding)
}

func delimiterName(delimiter rune) string {
	switch delimiter {
	case ';':
		return "semicolon"
	case ',':
		return "comma"
	case '\t':
		return "tab"
	}
	return fmt.Sprintf("%q", delimiter)
}
