package vault

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kozko2001/obsidian-wallabag/pkg/domain"
)

// toReadTag is the literal tag label that marks an entry as still to be read
const toReadTag = "TO_READ"

// FrontMatter is the metadata block prepended to every synced note
type FrontMatter struct {
	Title   string   `yaml:"title"`
	URL     string   `yaml:"url"`
	Starred int      `yaml:"starred"`
	Tags    []string `yaml:"tags,flow"`
	ToRead  bool     `yaml:"to_read"`
}

// newFrontMatter derives the front matter fields from an entry
func newFrontMatter(e domain.Entry) FrontMatter {
	starred := 0
	if e.Starred {
		starred = 1
	}
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	return FrontMatter{
		Title:   e.Title,
		URL:     e.URL,
		Starred: starred,
		Tags:    tags,
		ToRead:  e.HasTag(toReadTag),
	}
}

// RenderNote serializes an entry into its full note form: a YAML front
// matter block between --- fences followed by the markdown body. The
// output is byte-deterministic for identical entries.
func RenderNote(e domain.Entry) (string, error) {
	fm, err := yaml.Marshal(newFrontMatter(e))
	if err != nil {
		return "", fmt.Errorf("marshal front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(fm)
	b.WriteString("---\n\n")
	b.WriteString(e.Content)
	if !strings.HasSuffix(e.Content, "\n") {
		b.WriteString("\n")
	}
	return b.String(), nil
}
