package yawn

import "errors"

var (
	// ErrInvalidInput is returned when a document is created from input that is not text.
	ErrInvalidInput = errors.New("yawn: input is not valid text")

	// ErrUnknownType is returned when a value cannot be classified as a YAML kind.
	ErrUnknownType = errors.New("yawn: unknown type")

	// ErrFlowStyle is returned for structural edits on flow-style ("[a, b]", "{a: 1}") collections.
	ErrFlowStyle = errors.New("yawn: structural edits on flow-style collections are not supported")

	// ErrOverlappingEdits is returned when two computed edits touch the same bytes.
	ErrOverlappingEdits = errors.New("yawn: overlapping edits")

	// ErrBrokenDocument is returned when the edited text would no longer parse,
	// such as an alias left pointing at a deleted anchor. The text is unchanged.
	ErrBrokenDocument = errors.New("yawn: edit would leave the document unparsable")

	// ErrNotMapping is returned by key operations when the root holds something
	// other than a mapping or null.
	ErrNotMapping = errors.New("yawn: document root is not a mapping")

	// ErrNotSequence is returned by element operations when the root holds
	// something other than a sequence or null.
	ErrNotSequence = errors.New("yawn: document root is not a sequence")
)
