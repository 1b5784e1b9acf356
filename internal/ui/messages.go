package ui

import "adminkit/internal/store"

// recordPage is one collection's rows from a single list load.
type recordPage struct {
	collection string
	rows       []store.Record
}

// autoRefreshMsg fires on the auto-refresh interval.
type autoRefreshMsg struct{}

// themeSavedMsg reports whether the cycled theme was persisted.
type themeSavedMsg struct {
	name string
	err  error
}

// copiedMsg reports a clipboard write.
type copiedMsg struct {
	id  string
	err error
}

type collectionKey struct{}
