package invites

// Kind is the kind of attribution result.
type Kind int

const (
	// NoSignal means no invite use was recorded.
	NoSignal Kind = iota
	// Attributed means exactly one invite was used.
	Attributed
	// Ambiguous means several invites were used since the last refresh,
	// so there is no way to tell which one belongs to this member.
	Ambiguous
)

func (k Kind) String() string {
	switch k {
	case NoSignal:
		return "no signal"
	case Attributed:
		return "attributed"
	case Ambiguous:
		return "ambiguous"
	}
	return "unknown"
}

// Result is the outcome of Resolve.
type Result struct {
	Kind Kind
	// Code is only set if Kind is Attributed.
	Code string
	// Candidates is only set if Kind is Ambiguous, sorted.
	Candidates []string
	// Anomaly is set if a human joined without any invite use being recorded.
	// Bots are added through OAuth and never use an invite.
	Anomaly bool
}

// Resolve decides which invite a single joined member used.
// Only a delta with exactly one invite is attributed; anything else is never guessed.
func Resolve(delta Delta, joinedIsBot bool) Result {
	switch len(delta) {
	case 0:
		return Result{Kind: NoSignal, Anomaly: !joinedIsBot}
	case 1:
		for code := range delta {
			return Result{Kind: Attributed, Code: code}
		}
	}

	return Result{Kind: Ambiguous, Candidates: delta.Codes()}
}

// Err returns ErrAmbiguous for an ambiguous result, and nil otherwise.
// An ambiguous join isn't a fault, but it must never be retried or guessed.
func (r Result) Err() error {
	if r.Kind == Ambiguous {
		return ErrAmbiguous
	}
	return nil
}
