package tui

import "github.com/Veraticus/schoolpay/internal/model"

// transactionsLoadedMsg carries the result of a fetch tagged with the
// generation it was started under.
type transactionsLoadedMsg struct {
	err        error
	rows       []model.Transaction
	pagination model.Pagination
	generation uint64
}

// themeLoadedMsg carries the stored dark mode flag.
type themeLoadedMsg struct {
	err  error
	dark bool
}

// themeSavedMsg reports the outcome of persisting the theme.
type themeSavedMsg struct {
	err error
}

// exportDoneMsg reports the outcome of exporting the current view.
type exportDoneMsg struct {
	err         error
	destination string
	count       int
}
