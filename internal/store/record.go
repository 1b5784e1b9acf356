package store

import (
	"strings"
	"time"
	"unicode/utf8"

	appErrors "adminkit/internal/errors"
)

// MaxTitleLength bounds Record.Title in runes.
const MaxTitleLength = 200

// Record is a generic content entry in a collection.
type Record struct {
	ID         string
	Collection string
	Title      string
	Body       string // markdown
	Published  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate checks the fields a caller controls.
func (r Record) Validate() error {
	title := strings.TrimSpace(r.Title)
	switch {
	case strings.TrimSpace(r.Collection) == "":
		return appErrors.New(appErrors.CodeInvalidRecord, "collection is required", nil)
	case title == "":
		return appErrors.New(appErrors.CodeInvalidRecord, "title is required", nil)
	case utf8.RuneCountInString(title) > MaxTitleLength:
		return appErrors.New(appErrors.CodeInvalidRecord, "title is too long", nil)
	}
	return nil
}

func notFound(id string) error {
	return appErrors.New(appErrors.CodeNotFound, "record "+id+" not found", nil)
}

func storeFailed(msg string, err error) error {
	return appErrors.New(appErrors.CodeStoreFailed, msg+": "+err.Error(), err)
}
