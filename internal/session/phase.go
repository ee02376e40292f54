package session

type Phase int32

const (
	Idle Phase = iota
	Aligning
	Capturing
	Resolving
	Done
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Aligning:
		return "aligning"
	case Capturing:
		return "capturing"
	case Resolving:
		return "resolving"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Active reports whether a session is between start and its terminal phase.
func (p Phase) Active() bool {
	return p == Aligning || p == Capturing || p == Resolving
}
