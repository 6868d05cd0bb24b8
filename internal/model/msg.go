package model

import "finboard/internal/table"

// Bubble Tea message types

// ErrorMsg represents an error message.
type ErrorMsg struct {
	Err error
}

// DataLoadedMsg is sent when the exports were fetched and parsed.
type DataLoadedMsg struct {
	Data Dataset
}

// FilterClosedMsg is sent when the filter editor closes. Applied is false
// when the edit was cancelled.
type FilterClosedMsg struct {
	Column  string
	Applied bool
	Cleared bool
}

// OpenDetailMsg is sent to show the detail screen of a transaction row.
type OpenDetailMsg struct {
	Row table.Row
}

// LanguageChangedMsg is sent after the language preference was stored.
type LanguageChangedMsg struct {
	Lang string
}

// Screen represents different app screens.
type Screen int

const (
	ScreenTransactions Screen = iota
	ScreenMonthly
	ScreenCategories
	ScreenDetail
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNav Mode = iota
	ModeFilter
)
