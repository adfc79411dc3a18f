package server

import (
	"bytes"
	"net"
	"strings"
	"time"

	"diagd/models"
)

// MaxRequestSize is the most a single request read will consume.
// Anything past it, or split over several TCP segments, is never seen.
const MaxRequestSize = 2048

var resourcePaths = map[string]models.RequestKind{
	"/hostname": models.KindHostName,
	"/cpu-name": models.KindCPUName,
	"/load":     models.KindLoad,
}

// readRequest performs exactly one read of up to MaxRequestSize bytes
func readRequest(conn net.Conn, timeout time.Duration) []byte {
	if timeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(timeout))
	}
	buf := make([]byte, MaxRequestSize)
	n, _ := conn.Read(buf)
	return buf[:n]
}

// Classify maps raw request bytes to a RequestKind.
// By default any first line containing "GET" counts as a GET; strict requires
// the first token to be exactly "GET".
func Classify(data []byte, strict bool) models.RequestKind {
	if len(data) == 0 {
		return models.KindUnknown
	}

	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	first := strings.TrimSuffix(string(line), "\r")

	tokens := strings.Split(first, " ")
	if strict {
		if tokens[0] != "GET" {
			return models.KindUnknown
		}
	} else if !strings.Contains(first, "GET") {
		return models.KindUnknown
	}
	if len(tokens) < 2 {
		return models.KindUnknown
	}

	if kind, ok := resourcePaths[tokens[1]]; ok {
		return kind
	}
	return models.KindInvalidResource
}
