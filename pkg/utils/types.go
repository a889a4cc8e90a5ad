package utils

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is the body of every reply to a webhook caller.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
