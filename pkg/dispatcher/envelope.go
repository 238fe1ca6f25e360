// Package dispatcher routes TaskRequests to an agent's registered skills.
package dispatcher

// TaskStatus is the outcome of a task.
type TaskStatus string

const (
	StatusSuccess TaskStatus = "success"
	StatusFailure TaskStatus = "failure"
)

// Failure kinds carried inside a TaskResult.
const (
	KindUnknownSkill     = "UNKNOWN_SKILL"
	KindInvalidArguments = "INVALID_ARGUMENTS"
	KindExecutionError   = "EXECUTION_ERROR"
	KindTransportError   = "TRANSPORT_ERROR"
)

// TaskRequest is the JSON body of POST /tasks.
type TaskRequest struct {
	SkillName string                 `json:"skill_name"`
	Arguments map[string]interface{} `json:"arguments"`
	RequestID string                 `json:"request_id"`
}

// TaskResult is the JSON response to a TaskRequest. Payload is set on success,
// Error on failure.
type TaskResult struct {
	RequestID string       `json:"request_id"`
	Status    TaskStatus   `json:"status"`
	Payload   interface{}  `json:"payload,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail holds structured error information.
type ErrorDetail struct {
	Kind      string      `json:"kind"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	Retryable bool        `json:"retryable"`
}

// Succeeded reports whether the task completed successfully.
func (r *TaskResult) Succeeded() bool {
	return r != nil && r.Status == StatusSuccess
}

// Kind returns the failure kind, or "" for a successful result.
func (r *TaskResult) Kind() string {
	if r == nil || r.Error == nil {
		return ""
	}
	return r.Error.Kind
}

// SuccessResult builds a successful TaskResult.
func SuccessResult(requestID string, payload interface{}) *TaskResult {
	return &TaskResult{RequestID: requestID, Status: StatusSuccess, Payload: payload}
}

// FailureResult builds a failed TaskResult.
func FailureResult(requestID, kind, message string, retryable bool) *TaskResult {
	return &TaskResult{
		RequestID: requestID,
		Status:    StatusFailure,
		Error: &ErrorDetail{
			Kind:      kind,
			Message:   message,
			Retryable: retryable,
		},
	}
}
