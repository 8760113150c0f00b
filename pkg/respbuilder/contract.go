package respbuilder

type ErrKind int64

const (
	ErrUnhandled ErrKind = iota + 1
	ErrValidation
	ErrDuplicateEntries
	ErrResourceNotFound
	ErrUnauthorized
	ErrInvalidDataContract
	ErrUnsupportedPlatform
)

type Reason struct {
	Code       string
	Message    string
	HTTPStatus int
}

var ReasonMap = map[ErrKind]Reason{
	ErrUnhandled:           {Code: "01", Message: "unhandled error", HTTPStatus: 500},
	ErrValidation:          {Code: "02", Message: "error validation", HTTPStatus: 400},
	ErrDuplicateEntries:    {Code: "03", Message: "duplicate entries", HTTPStatus: 409},
	ErrResourceNotFound:    {Code: "04", Message: "resource not found", HTTPStatus: 404},
	ErrUnauthorized:        {Code: "05", Message: "unauthorized", HTTPStatus: 401},
	ErrInvalidDataContract: {Code: "06", Message: "invalid credential data contract", HTTPStatus: 422},
	ErrUnsupportedPlatform: {Code: "07", Message: "unsupported platform", HTTPStatus: 400},
}

// Status returns the http status of the kind, 500 when the kind is unknown.
func (k ErrKind) Status() int {
	reason, ok := ReasonMap[k]
	if !ok {
		return 500
	}

	return reason.HTTPStatus
}

// ErrorEntity contain code, message, debug (*if applicable) and trace id.
type ErrorEntity struct {
	Code    string `json:"error_code"`        // to handle by FE
	Message string `json:"error_description"` // to handle by FE (string version of the error code)
	Debug   string `json:"debug,omitempty"`   // technical error
	TraceID string `json:"trace_id"`
}

// HTTPError follow Facebook error response object:
// https://developers.facebook.com/docs/graph-api/using-graph-api/error-handling/
type HTTPError struct {
	Err ErrorEntity `json:"error"`
}

func (e HTTPError) Error() string {
	return e.Err.Message + ": " + e.Err.Debug
}

// HTTPSuccess success response always wrap in data key.
type HTTPSuccess struct {
	TraceID string      `json:"trace_id"`
	Data    interface{} `json:"data"`
}
