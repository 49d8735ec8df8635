package vault

import "github.com/dmitrijs2005/cloudvault/internal/client/models"

// FetchState tracks the file listing: idle until the first fetch, then
// loading and finally populated or failed.
type FetchState int

const (
	FetchIdle FetchState = iota
	FetchLoading
	FetchPopulated
	FetchFailed
)

func (s FetchState) String() string {
	switch s {
	case FetchLoading:
		return "loading"
	case FetchPopulated:
		return "populated"
	case FetchFailed:
		return "failed"
	default:
		return "idle"
	}
}

// State is a snapshot of the controller, safe to keep after the call.
type State struct {
	Files     []models.FileRecord
	Fetch     FetchState
	Loading   bool
	Uploading bool
	Notice    Notice

	// Viewing is the previewed record, nil when the viewer is closed.
	Viewing *models.FileRecord

	// ShareMenu is the id whose share menu is open; valid when ShareMenuOpen.
	ShareMenu     models.FileID
	ShareMenuOpen bool
}

// Empty reports whether the "no files yet" message applies. A failed fetch
// shows its error instead.
func (s State) Empty() bool {
	return s.Fetch == FetchPopulated && len(s.Files) == 0
}

func (s State) ShareMenuOpenFor(id models.FileID) bool {
	return s.ShareMenuOpen && s.ShareMenu == id
}

// Find returns the listed record with the given id.
func (s State) Find(id models.FileID) (models.FileRecord, bool) {
	for _, f := range s.Files {
		if f.ID == id {
			return f, true
		}
	}
	return models.FileRecord{}, false
}

// Preview describes how the viewed file should be rendered. Kind other has
// no inline renderer; the link is offered for opening externally.
type Preview struct {
	Record models.FileRecord
	Name   string
	Kind   models.MediaKind
}

func newPreview(rec models.FileRecord) Preview {
	name := LinkName(rec.FileLink)
	return Preview{Record: rec, Name: name, Kind: MediaKindOf(name)}
}
