// Package campaign prepares an email campaign for review: it reads the
// message template, finds its <Placeholder> tokens, loads the recipient CSV
// and splits recipients into valid and invalid rows.
package campaign

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	ErrMissingEmailColumn = errors.New(`CSV must contain an "Email" column`)
	ErrBulkPlaceholders   = errors.New("template contains placeholders, but bulk mode does not support them")
	ErrNoValidRecipients  = errors.New("no valid email addresses found in CSV")
	ErrUnsupportedFile    = errors.New("unsupported file type")
	ErrUnknownMode        = errors.New("unknown campaign mode")
	ErrMissingContent     = errors.New("subject and template are required")
)

// Mode selects how a campaign is addressed.
type Mode string

const (
	// Personalized sends one message per recipient with placeholders filled in.
	Personalized Mode = "personalized"
	// Bulk sends a single message with every recipient in BCC.
	Bulk Mode = "bulk"
)

// ParseMode accepts "personalized" or "bulk", ignoring case and surrounding space.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Personalized:
		return Personalized, nil
	case Bulk:
		return Bulk, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

var (
	placeholderRE = regexp.MustCompile(`<([^<>]+)>`)
	emailRE       = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)
)

// TemplateExtensions and RecipientExtensions list accepted upload types.
var (
	TemplateExtensions  = []string{"txt", "html"}
	RecipientExtensions = []string{"csv"}
)

// ExtractPlaceholders returns every <Name> token in template, and the unique
// names in first-seen order.
func ExtractPlaceholders(template string) (all, unique []string) {
	seen := make(map[string]bool)
	for _, m := range placeholderRE.FindAllStringSubmatch(template, -1) {
		name := m[1]
		all = append(all, name)
		if !seen[name] {
			seen[name] = true
			unique = append(unique, name)
		}
	}
	return all, unique
}

// IsValidEmail applies the address rule used when recipients are imported.
func IsValidEmail(s string) bool {
	return emailRE.MatchString(s)
}

// Render replaces each <placeholder> in template with the matching field.
// Placeholders without a field are left untouched.
func Render(template string, placeholders []string, fields map[string]string) string {
	out := template
	for _, ph := range placeholders {
		if v, ok := fields[ph]; ok {
			out = strings.ReplaceAll(out, "<"+ph+">", v)
		}
	}
	return out
}

// CheckExtension reports ErrUnsupportedFile unless path ends in one of allowed.
func CheckExtension(path string, allowed []string) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	for _, a := range allowed {
		if ext == a {
			return nil
		}
	}
	return fmt.Errorf("%w: %s (want %s)", ErrUnsupportedFile, filepath.Base(path), strings.Join(allowed, ", "))
}

// SuccessRate is sent/total as a percentage, 0 for an empty campaign.
func SuccessRate(sent, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(sent) / float64(total) * 100
}

// Draft is a campaign ready for review.
type Draft struct {
	Subject      string
	Mode         Mode
	Template     string
	Placeholders []string
	Batch        *Batch
}

// Preview renders the template against the first valid recipient.
func (d *Draft) Preview() string {
	if d.Batch == nil || len(d.Batch.Valid) == 0 || len(d.Placeholders) == 0 {
		return d.Template
	}
	return Render(d.Template, d.Placeholders, d.Batch.Valid[0].Fields)
}

// Request is a campaign as submitted for preparation. TemplateFile, when
// set, replaces the typed Template.
type Request struct {
	Subject        string
	Mode           Mode
	Template       string
	TemplateFile   string
	RecipientsFile string
}

// Prepare resolves the template, loads the recipient file and validates both
// for the request's mode.
func Prepare(req Request) (*Draft, error) {
	template := req.Template
	if req.TemplateFile != "" {
		if err := CheckExtension(req.TemplateFile, TemplateExtensions); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(req.TemplateFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read template: %w", err)
		}
		template = string(data)
	}
	template = strings.TrimSpace(template)
	if strings.TrimSpace(req.Subject) == "" || template == "" {
		return nil, ErrMissingContent
	}
	if err := CheckExtension(req.RecipientsFile, RecipientExtensions); err != nil {
		return nil, err
	}

	_, placeholders := ExtractPlaceholders(template)
	if req.Mode == Bulk && len(placeholders) > 0 {
		return nil, ErrBulkPlaceholders
	}

	batch, err := LoadRecipientsFile(req.RecipientsFile, placeholders)
	if err != nil {
		return nil, err
	}
	if len(batch.Valid) == 0 {
		return nil, ErrNoValidRecipients
	}

	return &Draft{
		Subject:      req.Subject,
		Mode:         req.Mode,
		Template:     template,
		Placeholders: placeholders,
		Batch:        batch,
	}, nil
}
