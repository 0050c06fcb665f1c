package destination

import "encoding/json"

type Status string

const (
	StatusSkipped          Status = "skipped"
	StatusSuccess          Status = "success"
	StatusClientError      Status = "client_error"
	StatusTransportFailure Status = "transport_failure"
)

const (
	skippedMessage = "Event skipped"
	successMessage = "Processed successfully"
	failedMessage  = "Request failed"
	errorPrefix    = "Request error: "
)

// Result is the terminal outcome of one destination for one event.
// It encodes as its message so responses read like "Processed successfully".
type Result struct {
	Status  Status
	Message string
}

func Skipped() Result {
	return Result{Status: StatusSkipped, Message: skippedMessage}
}

func Success() Result {
	return Result{Status: StatusSuccess, Message: successMessage}
}

func ClientError(msg string) Result {
	return Result{Status: StatusClientError, Message: errorPrefix + msg}
}

func TransportFailure() Result {
	return Result{Status: StatusTransportFailure, Message: failedMessage}
}

func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Message)
}
