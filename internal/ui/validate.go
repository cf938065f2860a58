package ui

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"upsend/internal/campaign"
)

const (
	msgRequired     = "This field is required"
	msgInvalidEmail = "Please enter a valid email address"
)

var formEmailRE = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldEmail
	fieldFile
	fieldChoice
)

// fieldRule is the constraint set of one form field.
type fieldRule struct {
	required   bool
	kind       fieldKind
	extensions []string
	choices    []string
}

// validationMessage returns the message for value under rule, or "" when
// the value satisfies every constraint.
func validationMessage(rule fieldRule, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		if rule.required {
			return msgRequired
		}
		return ""
	}

	switch rule.kind {
	case fieldEmail:
		if !formEmailRE.MatchString(value) {
			return msgInvalidEmail
		}
	case fieldChoice:
		if !slices.Contains(rule.choices, strings.ToLower(value)) {
			return fmt.Sprintf("Please choose one of: %s", strings.Join(rule.choices, ", "))
		}
	case fieldFile:
		if err := campaign.CheckExtension(value, rule.extensions); err != nil {
			return fmt.Sprintf("Please choose a .%s file", strings.Join(rule.extensions, " or ."))
		}
		info, err := os.Stat(value)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return "File not found"
			}
			return "File cannot be read"
		}
		if info.IsDir() {
			return "Please choose a file, not a directory"
		}
	}
	return ""
}
