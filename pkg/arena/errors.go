package arena

import (
	"errors"
	"fmt"
)

// RefusalKind classifies why a request was refused, mirroring the error
// taxonomy surfaced to clients.
type RefusalKind string

const (
	KindNotFound      RefusalKind = "not_found"
	KindForbidden     RefusalKind = "forbidden"
	KindIllegalAction RefusalKind = "illegal_action"
	KindStaleState    RefusalKind = "stale_state"
	KindBusy          RefusalKind = "busy"
	KindConflict      RefusalKind = "conflict"
	KindInternal      RefusalKind = "internal"
)

// Refusal is a typed rejection with a human-readable message. Refusals are
// returned to the caller and never written to the event log.
type Refusal struct {
	Kind RefusalKind
	Msg  string
}

func (r *Refusal) Error() string { return r.Msg }

func refuse(kind RefusalKind, format string, args ...any) *Refusal {
	return &Refusal{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// AsRefusal extracts a Refusal from an error chain, defaulting to an internal
// refusal for unexpected errors.
func AsRefusal(err error) *Refusal {
	var r *Refusal
	if errors.As(err, &r) {
		return r
	}
	return &Refusal{Kind: KindInternal, Msg: "internal error"}
}
