package session

type Status string

const (
	StatusNone      Status = "none"
	StatusSuccess   Status = "success"
	StatusDuplicate Status = "duplicate"
	StatusFailure   Status = "failure"
	StatusError     Status = "error"
)

// Reason classifies failed sessions for logs and pollers.
type Reason string

const (
	ReasonNoMatch           Reason = "no_match"
	ReasonDeviceUnavailable Reason = "device_unavailable"
	ReasonRecognizer        Reason = "recognizer"
	ReasonStorage           Reason = "storage_failure"
	ReasonTimeout           Reason = "timeout"
	ReasonInternal          Reason = "internal"
)

// Outcome is the terminal result of one session, or the NoResult sentinel.
// @Description session result
type Outcome struct {
	Status     Status  `json:"status"`
	Session    uint64  `json:"session,omitempty"`
	Name       string  `json:"name,omitempty"`
	StudentID  string  `json:"student_id,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Message    string  `json:"message,omitempty"`
	Reason     Reason  `json:"reason,omitempty"`
}

// NoResult is what pollers see until the session publishes.
func NoResult(session uint64) Outcome {
	return Outcome{Status: StatusNone, Session: session}
}

func (o Outcome) Ready() bool {
	return o.Status != StatusNone
}

func success(session uint64, name, id string, confidence float64) Outcome {
	return Outcome{Status: StatusSuccess, Session: session, Name: name, StudentID: id, Confidence: confidence}
}

func duplicate(session uint64, name, id string) Outcome {
	return Outcome{Status: StatusDuplicate, Session: session, Name: name, StudentID: id}
}

func noMatch(session uint64, message string) Outcome {
	return Outcome{Status: StatusFailure, Session: session, Message: message, Reason: ReasonNoMatch}
}

func failed(session uint64, reason Reason, message string) Outcome {
	return Outcome{Status: StatusError, Session: session, Message: message, Reason: reason}
}
