package content

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/microcosm-cc/bluemonday"

	"github.com/kozko2001/obsidian-wallabag/pkg/domain"
)

// ConversionError indicates an entry's HTML defeated markdown translation.
// It is isolated per entry and never aborts sibling conversions.
type ConversionError struct {
	EntryID int64
	Reason  string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert entry %d: %s", e.EntryID, e.Reason)
}

// Converter translates an entry's HTML body into markdown.
// It is pure: no network, no disk, deterministic for a given input.
type Converter struct {
	policy *bluemonday.Policy
}

// NewConverter creates a converter with a UGC sanitization policy
func NewConverter() *Converter {
	return &Converter{policy: bluemonday.UGCPolicy()}
}

// Convert returns a copy of the entry with Content replaced by its
// markdown translation. All other fields are preserved unchanged.
func (c *Converter) Convert(e domain.Entry) (domain.Entry, error) {
	sanitized := c.policy.Sanitize(e.Content)

	markdown, err := htmltomarkdown.ConvertString(sanitized)
	if err != nil {
		return domain.Entry{}, &ConversionError{EntryID: e.ID, Reason: err.Error()}
	}

	converted := e
	converted.Content = strings.TrimSpace(markdown)
	return converted, nil
}
