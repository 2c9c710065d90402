package response

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Envelope is the standardized API response shape. Data and Error are
// mutually exclusive; Meta is always present.
type Envelope struct {
	Data  interface{} `json:"data"`
	Error *ErrorBody  `json:"error,omitempty"`
	Meta  Meta        `json:"meta"`
}

// ErrorBody represents a structured error response.
type ErrorBody struct {
	Code    ErrCode           `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Meta includes request tracing and timing.
type Meta struct {
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// ────────────────────────────────────────────────────────────────────────────
// Helper builders
// ────────────────────────────────────────────────────────────────────────────

// Success sends a successful JSON response with the given status code and data.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Envelope{
		Data: data,
		Meta: buildMeta(c),
	})
}

// Fail sends an error response with an error code and no field-level details.
func Fail(c *gin.Context, statusCode int, code ErrCode) {
	c.JSON(statusCode, Envelope{
		Error: &ErrorBody{Code: code, Message: GetMessage(code)},
		Meta:  buildMeta(c),
	})
}

// FailWithFields sends an error response with field-level validation details.
func FailWithFields(c *gin.Context, statusCode int, code ErrCode, fields map[string]string) {
	c.JSON(statusCode, Envelope{
		Error: &ErrorBody{Code: code, Message: GetMessage(code), Fields: fields},
		Meta:  buildMeta(c),
	})
}

// AbortFail aborts the middleware chain and sends an error response.
func AbortFail(c *gin.Context, statusCode int, code ErrCode) {
	c.AbortWithStatusJSON(statusCode, Envelope{
		Error: &ErrorBody{Code: code, Message: GetMessage(code)},
		Meta:  buildMeta(c),
	})
}

func buildMeta(c *gin.Context) Meta {
	reqID, _ := c.Get(ContextKeyRequestID)
	id, ok := reqID.(string)
	if !ok || id == "" {
		id = uuid.New().String() // fallback if middleware not applied
	}
	return Meta{
		RequestID: id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
