package lostwrite

// Reason explains why a write was lost or passed through.
type Reason string

const (
	ReasonMatched           Reason = "matched"
	ReasonNoMatch           Reason = "no_match"
	ReasonLogUnavailable    Reason = "log_unavailable"
	ReasonConfigUnavailable Reason = "config_unavailable"
	ReasonConfigMalformed   Reason = "config_malformed"
	ReasonPathUnresolved    Reason = "path_unresolved"
)

// Decision is the outcome for one intercepted write. It only lives for
// the duration of the call.
type Decision struct {
	Lose   bool
	Reason Reason
	// Block and Path are set when Lose is true.
	Block int64
	Path  string
}

func passThrough(reason Reason) Decision {
	return Decision{Reason: reason}
}
