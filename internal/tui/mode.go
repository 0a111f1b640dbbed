package tui

// Mode is what the browser's keys currently drive.
type Mode int

const (
	ModeBrowse Mode = iota
	ModeSearch
	ModeLightbox
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeBrowse:
		return "BROWSE"
	case ModeSearch:
		return "SEARCH"
	case ModeLightbox:
		return "VIEW"
	default:
		return "UNKNOWN"
	}
}
