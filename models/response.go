package models

const ContentTypeText = "text/plain"

// Response is one reply on the wire
type Response struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}
