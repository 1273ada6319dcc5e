package workflow

import "errors"

// Error taxonomy for workflow operations. Failed operations leave no
// observable side effects; callers retry only on ErrConcurrentModification
// after re-reading document state.
var (
	ErrNotFound               = errors.New("document not found")
	ErrPermissionDenied       = errors.New("user is not the current handler of this document")
	ErrInvalidState           = errors.New("action is not allowed in the document's current status")
	ErrInvalidTarget          = errors.New("target user's role level does not permit this routing")
	ErrValidation             = errors.New("required field is missing")
	ErrConcurrentModification = errors.New("document changed while the action was being applied")
)
