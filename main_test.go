package main

import (
	"bytes"
	"errors"
	"net"
	"testing"

	"gotest.tools/v3/assert"
)

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("stdout closed")
}

// cannedServer answers every connection with the same raw response
func cannedServer(t *testing.T, raw string) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	assert.NilError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			buf := make([]byte, 2048)
			_, _ = conn.Read(buf)
			_, _ = conn.Write([]byte(raw))
			_ = conn.Close()
		}
	}()
	return ln.Addr().String()
}

func TestRunProbe_Usage(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, runProbe(nil, &out), 1)
	assert.Equal(t, runProbe([]string{"127.0.0.1:1"}, &out), 1)
	assert.Equal(t, out.Len(), 0)
}

func TestRunProbe_PrintsBody(t *testing.T) {
	addr := cannedServer(t, "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 5\r\n\r\nhost\n")

	var out bytes.Buffer
	assert.Equal(t, runProbe([]string{addr, "/hostname"}, &out), 0)
	assert.Equal(t, out.String(), "host\n")
}

func TestRunProbe_NotFound(t *testing.T) {
	addr := cannedServer(t, "HTTP/1.1 404 Not Found\r\nContent-Type: text/plain\r\nContent-Length: 10\r\n\r\nNot Found\n")

	var out bytes.Buffer
	assert.Equal(t, runProbe([]string{addr, "/nope"}, &out), 1)
	assert.Equal(t, out.String(), "Not Found\n")
}

func TestRunProbe_WriteFailure(t *testing.T) {
	addr := cannedServer(t, "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 5\r\n\r\nhost\n")

	assert.Equal(t, runProbe([]string{addr, "/hostname"}, failingWriter{}), 1)
}
