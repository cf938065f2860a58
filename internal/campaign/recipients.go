package campaign

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// EmailColumn is the CSV header every recipient file must carry.
const EmailColumn = "Email"

// Recipient is one data row of the recipient CSV.
type Recipient struct {
	Line    int
	Fields  map[string]string
	Missing []string
}

// Email returns the recipient's address, trimmed.
func (r Recipient) Email() string {
	return strings.TrimSpace(r.Fields[EmailColumn])
}

// Batch is a parsed recipient file.
type Batch struct {
	Headers []string
	Valid   []Recipient
	Invalid []Recipient
}

// Total is the number of data rows read.
func (b *Batch) Total() int {
	return len(b.Valid) + len(b.Invalid)
}

// LoadRecipientsFile opens path and parses it with LoadRecipients.
func LoadRecipientsFile(path string, placeholders []string) (*Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open recipients: %w", err)
	}
	defer f.Close()
	return LoadRecipients(f, placeholders)
}

// LoadRecipients parses a recipient CSV. Placeholder columns the file lacks
// are added empty; a row is invalid when its address is malformed or any
// placeholder value is blank.
func LoadRecipients(r io.Reader, placeholders []string) (*Batch, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrMissingEmailColumn
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(headers[i], "\ufeff"))
	}

	hasEmail := false
	known := make(map[string]bool, len(headers))
	for _, h := range headers {
		known[h] = true
		if h == EmailColumn {
			hasEmail = true
		}
	}
	if !hasEmail {
		return nil, ErrMissingEmailColumn
	}
	for _, ph := range placeholders {
		if !known[ph] {
			headers = append(headers, ph)
			known[ph] = true
		}
	}

	batch := &Batch{Headers: headers}
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		rec := Recipient{Line: line, Fields: make(map[string]string, len(headers))}
		for i, h := range headers {
			if i < len(record) {
				rec.Fields[h] = record[i]
			} else {
				rec.Fields[h] = ""
			}
		}

		if !IsValidEmail(rec.Email()) {
			rec.Missing = append(rec.Missing, "Email (Invalid)")
		}
		for _, ph := range placeholders {
			if ph == EmailColumn {
				continue
			}
			if strings.TrimSpace(rec.Fields[ph]) == "" {
				rec.Missing = append(rec.Missing, ph)
			}
		}

		if len(rec.Missing) == 0 {
			batch.Valid = append(batch.Valid, rec)
		} else {
			batch.Invalid = append(batch.Invalid, rec)
		}
	}

	return batch, nil
}
