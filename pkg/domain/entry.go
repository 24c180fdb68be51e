package domain

import "time"

// Entry represents one article pulled from the wallabag server.
// Entries are immutable snapshots for the duration of a sync run;
// nothing in this system mutates remote state.
type Entry struct {
	ID        int64
	Title     string
	URL       string
	Domain    string
	CreatedAt time.Time
	Content   string // HTML as fetched, markdown after conversion
	Tags      []string
	Archived  bool
	Starred   bool
}

// HasTag reports whether the entry carries the given tag label
func (e *Entry) HasTag(label string) bool {
	for _, t := range e.Tags {
		if t == label {
			return true
		}
	}
	return false
}

// EntryPage is one page of the paginated entries listing
type EntryPage struct {
	Page    int
	Pages   int
	Limit   int
	Entries []Entry
}

// Credentials hold the OAuth client and user credentials for one sync run
type Credentials struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
}

// Token is the bearer token returned by a successful authentication.
// It is used for a single run and never cached or refreshed.
type Token struct {
	AccessToken  string
	ExpiresIn    int
	RefreshToken string
	TokenType    string
}
