package api

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"diagd/models"
)

var (
	ErrMalformedResponse = errors.New("malformed response")
	ErrLengthMismatch    = errors.New("content-length does not match body")
)

// Client fetches resources from a running server, one connection per request
type Client struct {
	addr   string
	dialer net.Dialer
	// Timeout bounds the whole exchange, including the server's load sampling
	Timeout time.Duration
}

func NewClient(addr string) *Client {
	return &Client{
		addr:    addr,
		Timeout: 10 * time.Second,
	}
}

// Fetch sends a GET for path and returns the parsed response
func (c *Client) Fetch(ctx context.Context, path string) (*models.Response, error) {
	return c.Send(ctx, []byte("GET "+path+" HTTP/1.1\r\nHost: "+c.addr+"\r\n\r\n"))
}

// Send writes a raw request and reads until the server closes the connection
func (c *Client) Send(ctx context.Context, request []byte) (*models.Response, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	conn, err := c.dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if len(request) > 0 {
		if _, err := conn.Write(request); err != nil {
			return nil, fmt.Errorf("failed to send request: %w", err)
		}
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.CloseWrite()
	}

	raw, err := io.ReadAll(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return ParseResponse(raw)
}

// ParseResponse decodes a status line, headers and body and checks Content-Length
func ParseResponse(raw []byte) (*models.Response, error) {
	sep := []byte("\r\n\r\n")
	idx := bytes.Index(raw, sep)
	if idx < 0 {
		sep = []byte("\n\n")
		idx = bytes.Index(raw, sep)
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: no header terminator", ErrMalformedResponse)
	}
	head, body := raw[:idx], raw[idx+len(sep):]

	sc := bufio.NewScanner(bytes.NewReader(head))
	if !sc.Scan() {
		return nil, fmt.Errorf("%w: empty status line", ErrMalformedResponse)
	}
	status, err := parseStatusLine(strings.TrimSpace(sc.Text()))
	if err != nil {
		return nil, err
	}

	resp := &models.Response{Status: status, Body: body}
	length := -1
	for sc.Scan() {
		name, value, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "content-type":
			resp.ContentType = value
		case "content-length":
			length, err = strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("%w: content-length %q", ErrMalformedResponse, value)
			}
		}
	}

	if length < 0 {
		return nil, fmt.Errorf("%w: missing content-length", ErrMalformedResponse)
	}
	if length != len(body) {
		return nil, fmt.Errorf("%w: header=%d body=%d", ErrLengthMismatch, length, len(body))
	}
	return resp, nil
}

func parseStatusLine(line string) (int, error) {
	// HTTP/1.1 200 OK
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 || !strings.HasPrefix(parts[0], "HTTP/") {
		return 0, fmt.Errorf("%w: status line %q", ErrMalformedResponse, line)
	}
	code, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: status code %q", ErrMalformedResponse, parts[1])
	}
	return code, nil
}
