package server

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"diagd/models"
)

// MaxBodySize caps the body of a single response. Longer content is truncated.
const MaxBodySize = 1024

var ErrInvalidStatus = errors.New("invalid status code")

var statusText = map[int]string{
	200: "OK",
	404: "Not Found",
}

// BuildResponse frames content into the wire format.
// Only 200 and 404 are valid; anything else is a caller bug.
func BuildResponse(content []byte, status int) ([]byte, error) {
	text, ok := statusText[status]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, status)
	}
	if len(content) > MaxBodySize {
		content = content[:MaxBodySize]
	}

	var b bytes.Buffer
	b.Grow(64 + len(content))
	b.WriteString("HTTP/1.1 ")
	b.WriteString(strconv.Itoa(status))
	b.WriteByte(' ')
	b.WriteString(text)
	b.WriteString("\r\nContent-Type: ")
	b.WriteString(models.ContentTypeText)
	b.WriteString("\r\nContent-Length: ")
	b.WriteString(strconv.Itoa(len(content)))
	b.WriteString("\r\n\r\n")
	b.Write(content)
	return b.Bytes(), nil
}
