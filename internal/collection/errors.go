package collection

import (
	"errors"

	"github.com/thenoetrevino/tablero/internal/models"
)

// Controller errors
var (
	// ErrMaxLengthReached indicates that Create would grow the collection past its maximum
	ErrMaxLengthReached = errors.New("row limit reached")

	// ErrCreatorHidden indicates that row creation is disabled
	ErrCreatorHidden = errors.New("row creation is disabled")

	// ErrNotEditable indicates that the row or one of the submitted columns cannot be edited
	ErrNotEditable = errors.New("row is not editable")

	// ErrNotEditing indicates a save for a row that is not in edit mode
	ErrNotEditing = errors.New("row is not being edited")

	// ErrSaveInProgress indicates a second save for a row whose first save is still pending
	ErrSaveInProgress = errors.New("save already in progress for row")

	// ErrStale indicates a save completed after the collection was replaced; its effect was discarded
	ErrStale = errors.New("collection was replaced while saving")

	// ErrClosed indicates the controller has been torn down
	ErrClosed = errors.New("controller is closed")

	// ErrRowNotFound is re-exported so callers only need this package
	ErrRowNotFound = models.ErrRowNotFound

	// ErrLoadFailed is re-exported so callers only need this package
	ErrLoadFailed = models.ErrLoadFailed
)
