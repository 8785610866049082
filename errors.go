package optisync

import (
	"errors"
	"fmt"
)

// ErrNoSuchEntity reports an Update that targeted an id not present in the
// collection. Wrapped by *MissError; match with errors.Is.
var ErrNoSuchEntity = errors.New("optisync: no entity with that id")

// MissError carries the namespace and id of a failed targeted mutation.
type MissError struct {
	Namespace string
	ID        string
}

func (e *MissError) Error() string {
	return fmt.Sprintf("optisync: %s: no entity with id %q", e.Namespace, e.ID)
}

func (e *MissError) Unwrap() error { return ErrNoSuchEntity }

// DuplicateIDError reports a Replace whose incoming list carried the same id
// more than once. The collection is left unchanged.
type DuplicateIDError struct {
	Namespace string
	ID        string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("optisync: %s: duplicate id %q in replacement list", e.Namespace, e.ID)
}
