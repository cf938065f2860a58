package db

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"upsend/internal/model"
)

// ErrMissingColumn is returned when an import file lacks a required header.
var ErrMissingColumn = errors.New("missing required column")

type csvHeader map[string]int

func readHeader(r *csv.Reader) (csvHeader, error) {
	record, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty import file: %w", ErrMissingColumn)
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	h := csvHeader{}
	for i, name := range record {
		name = strings.TrimPrefix(name, "\ufeff")
		h[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return h, nil
}

func (h csvHeader) require(names ...string) error {
	for _, n := range names {
		if _, ok := h[n]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingColumn, n)
		}
	}
	return nil
}

func (h csvHeader) get(record []string, name string) string {
	i, ok := h[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func (h csvHeader) int(record []string, name string, line int) (int, error) {
	v := h.get(record, name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("line %d: invalid %s %q: %w", line, name, v, err)
	}
	return n, nil
}

func (h csvHeader) time(record []string, name string, line int) (*time.Time, error) {
	v := h.get(record, name)
	if v == "" {
		return nil, nil
	}
	t := parseTime(v)
	if t.IsZero() {
		return nil, fmt.Errorf("line %d: invalid %s %q", line, name, v)
	}
	return &t, nil
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr
}

// ImportCampaigns reads a campaign history CSV and inserts every row in one
// transaction. Required columns are subject and mode; ref is generated when
// absent. It returns the number of campaigns imported.
func ImportCampaigns(db *sql.DB, r io.Reader) (int, error) {
	cr := newReader(r)
	h, err := readHeader(cr)
	if err != nil {
		return 0, err
	}
	if err := h.require("subject", "mode"); err != nil {
		return 0, err
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	count := 0
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("line %d: %w", line, err)
		}

		c := model.NewCampaign{
			Ref:          h.get(record, "ref"),
			Subject:      h.get(record, "subject"),
			Sender:       h.get(record, "sender"),
			Mode:         strings.ToLower(h.get(record, "mode")),
			TemplateFile: h.get(record, "template_file"),
			CSVFile:      h.get(record, "csv_file"),
			Status:       strings.ToLower(h.get(record, "status")),
		}
		if c.Subject == "" {
			return 0, fmt.Errorf("line %d: subject is required", line)
		}
		if c.Ref == "" {
			c.Ref = uuid.NewString()
		}
		if c.Status == "" {
			c.Status = model.StatusCompleted
		}
		if c.Total, err = h.int(record, "total", line); err != nil {
			return 0, err
		}
		if c.Sent, err = h.int(record, "sent", line); err != nil {
			return 0, err
		}
		if c.Failed, err = h.int(record, "failed", line); err != nil {
			return 0, err
		}
		if c.CreatedAt, err = h.time(record, "created_at", line); err != nil {
			return 0, err
		}
		if c.CompletedAt, err = h.time(record, "completed_at", line); err != nil {
			return 0, err
		}

		if _, err := insertCampaign(tx, c); err != nil {
			return 0, fmt.Errorf("line %d: %w", line, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return count, nil
}

// ImportLogs reads a delivery log CSV. Each row names its campaign by
// campaign_ref or campaign_id. It returns the number of logs imported.
func ImportLogs(db *sql.DB, r io.Reader) (int, error) {
	cr := newReader(r)
	h, err := readHeader(cr)
	if err != nil {
		return 0, err
	}
	if err := h.require("recipient_email", "status"); err != nil {
		return 0, err
	}
	_, hasRef := h["campaign_ref"]
	_, hasID := h["campaign_id"]
	if !hasRef && !hasID {
		return 0, fmt.Errorf("%w: campaign_ref or campaign_id", ErrMissingColumn)
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	refs := map[string]int64{}
	count := 0
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("line %d: %w", line, err)
		}

		campaignID, err := resolveCampaign(tx, h, record, refs, line)
		if err != nil {
			return 0, err
		}

		l := model.NewEmailLog{
			CampaignID:     campaignID,
			RecipientEmail: h.get(record, "recipient_email"),
			Status:         strings.ToLower(h.get(record, "status")),
			ErrorMessage:   h.get(record, "error_message"),
		}
		if l.SentAt, err = h.time(record, "sent_at", line); err != nil {
			return 0, err
		}

		if _, err := insertLog(tx, l); err != nil {
			return 0, fmt.Errorf("line %d: %w", line, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return count, nil
}

func resolveCampaign(tx *sql.Tx, h csvHeader, record []string, refs map[string]int64, line int) (int64, error) {
	if ref := h.get(record, "campaign_ref"); ref != "" {
		if id, ok := refs[ref]; ok {
			return id, nil
		}
		var id int64
		err := tx.QueryRow("SELECT id FROM campaigns WHERE ref = ?", ref).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("line %d: unknown campaign ref %q: %w", line, ref, err)
		}
		refs[ref] = id
		return id, nil
	}

	v := h.get(record, "campaign_id")
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: invalid campaign_id %q: %w", line, v, err)
	}
	return id, nil
}
