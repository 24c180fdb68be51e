package wallabag

import (
	"encoding/json"
	"time"

	"github.com/kozko2001/obsidian-wallabag/pkg/domain"
)

// wirePage mirrors the entries listing response shape
type wirePage struct {
	Page     int `json:"page"`
	Pages    int `json:"pages"`
	Limit    int `json:"limit"`
	Embedded struct {
		Items []wireEntry `json:"items"`
	} `json:"_embedded"`
}

// wireEntry mirrors one entry item as the server sends it
type wireEntry struct {
	ID         int64    `json:"id"`
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	DomainName string   `json:"domain_name"`
	CreatedAt  wireTime `json:"created_at"`
	Content    string   `json:"content"`
	Tags       wireTags `json:"tags"`
	IsArchived wireBool `json:"is_archived"`
	IsStarred  wireBool `json:"is_starred"`
}

func (w *wireEntry) toDomain() domain.Entry {
	return domain.Entry{
		ID:        w.ID,
		Title:     w.Title,
		URL:       w.URL,
		Domain:    w.DomainName,
		CreatedAt: time.Time(w.CreatedAt),
		Content:   w.Content,
		Tags:      []string(w.Tags),
		Archived:  bool(w.IsArchived),
		Starred:   bool(w.IsStarred),
	}
}

// wireBool accepts the 0|1 integers the API uses as well as plain booleans
type wireBool bool

func (b *wireBool) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "0", "false", "null":
		*b = false
	case "1", "true":
		*b = true
	default:
		var n int
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*b = n != 0
	}
	return nil
}

// wireTags accepts both plain string labels and wallabag's tag objects
type wireTags []string

func (t *wireTags) UnmarshalJSON(data []byte) error {
	var labels []string
	if err := json.Unmarshal(data, &labels); err == nil {
		*t = labels
		return nil
	}

	var objects []struct {
		Label string `json:"label"`
	}
	if err := json.Unmarshal(data, &objects); err != nil {
		return err
	}
	*t = make([]string, 0, len(objects))
	for _, o := range objects {
		*t = append(*t, o.Label)
	}
	return nil
}

// wireTime accepts RFC3339 and wallabag's colon-less zone offset variant
type wireTime time.Time

func (t *wireTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*t = wireTime(time.Time{})
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05-0700"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = wireTime(parsed)
			return nil
		}
	}
	// unparseable timestamps are not worth failing the whole entry for
	*t = wireTime(time.Time{})
	return nil
}
