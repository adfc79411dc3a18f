package server

import (
	"context"
	"net"
	"time"

	"diagd/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	StatusOK       = 200
	StatusNotFound = 404
)

var notFoundBody = []byte("Not Found\n")

// Provider produces resource payloads
type Provider interface {
	HostName(ctx context.Context) []byte
	CPUName(ctx context.Context) []byte
	Load(ctx context.Context) []byte
}

// DispatcherConfig tunes request reading and classification
type DispatcherConfig struct {
	ReadTimeout  time.Duration
	StrictMethod bool
}

// Dispatcher answers one connection end to end
type Dispatcher struct {
	res    Provider
	cfg    DispatcherConfig
	logger *zap.Logger
}

func NewDispatcher(res Provider, cfg DispatcherConfig, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		res:    res,
		cfg:    cfg,
		logger: logger,
	}
}

// Handle reads, classifies and answers a connection, then closes it whatever happens
func (d *Dispatcher) Handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	start := time.Now()
	log := d.logger.With(
		zap.String("request_id", uuid.NewString()),
		zap.Stringer("remote", conn.RemoteAddr()),
	)

	kind := Classify(readRequest(conn, d.cfg.ReadTimeout), d.cfg.StrictMethod)
	status, body := d.resolve(ctx, kind)

	out, err := BuildResponse(body, status)
	if err != nil {
		log.Error("Response build failed", zap.Stringer("kind", kind), zap.Error(err))
		return
	}

	n, err := conn.Write(out)
	if err != nil {
		log.Warn("Response write failed",
			zap.Stringer("kind", kind),
			zap.Int("written", n),
			zap.Error(err),
		)
		return
	}

	log.Debug("Request served",
		zap.Stringer("kind", kind),
		zap.Int("status", status),
		zap.Int("bytes", n),
		zap.Duration("took", time.Since(start)),
	)
}

func (d *Dispatcher) resolve(ctx context.Context, kind models.RequestKind) (int, []byte) {
	switch kind {
	case models.KindHostName:
		return StatusOK, d.res.HostName(ctx)
	case models.KindCPUName:
		return StatusOK, d.res.CPUName(ctx)
	case models.KindLoad:
		return StatusOK, d.res.Load(ctx)
	case models.KindUnknown, models.KindInvalidResource:
		return StatusNotFound, notFoundBody
	}
	return StatusNotFound, notFoundBody
}
