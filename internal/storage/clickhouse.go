package storage

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"
)

const (
	bufferSize    = 10_000
	flushInterval = 100 * time.Millisecond
	flushBatch    = 1000
	drainTimeout  = 2 * time.Second
)

// ClickHouseSink writes detection events to ClickHouse asynchronously.
// Write() is non-blocking — events are buffered and batch-inserted in a
// background goroutine; the buffer drops on saturation so a slow
// ClickHouse can never stall the pipeline.
type ClickHouseSink struct {
	conn    driver.Conn
	buffer  chan *DetectionEvent
	done    chan struct{}
	flushed chan struct{} // closed by flushLoop when it returns
	logger  *zap.Logger
}

// NewClickHouseSink creates a ClickHouseSink and starts the background
// flush loop.
func NewClickHouseSink(dsn string, logger *zap.Logger) (*ClickHouseSink, error) {
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}

	// ParseDSN sets TLS when ?secure=true is in the DSN; enforce it here so
	// hosted ClickHouse (port 9440) connects even without the query param.
	if opts.TLS == nil {
		opts.TLS = &tls.Config{}
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, err
	}

	s := &ClickHouseSink{
		conn:    conn,
		buffer:  make(chan *DetectionEvent, bufferSize),
		done:    make(chan struct{}),
		flushed: make(chan struct{}),
		logger:  logger,
	}

	go s.flushLoop()
	return s, nil
}

// Write queues a detection event for async insertion.
// Non-blocking: drops the event if the buffer is full.
func (s *ClickHouseSink) Write(event *DetectionEvent) {
	select {
	case s.buffer <- event:
	default:
		s.logger.Warn("clickhouse buffer full, dropping event",
			zap.String("request_id", event.RequestID),
		)
	}
}

// Close signals the flush loop to drain remaining events, waits for it to
// finish (up to drainTimeout), and then returns. Safe to call once.
func (s *ClickHouseSink) Close() {
	close(s.done)
	<-s.flushed
}

func (s *ClickHouseSink) flushLoop() {
	defer close(s.flushed)

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]*DetectionEvent, 0, flushBatch)

	for {
		select {
		case event := <-s.buffer:
			batch = append(batch, event)
			if len(batch) >= flushBatch {
				s.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				s.flush(batch)
				batch = batch[:0]
			}
		case <-s.done:
			// Drain remaining events from buffer
			drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
			defer cancel()
		drainLoop:
			for {
				select {
				case event := <-s.buffer:
					batch = append(batch, event)
				case <-drainCtx.Done():
					break drainLoop
				default:
					break drainLoop
				}
			}
			if len(batch) > 0 {
				s.flush(batch)
			}
			return
		}
	}
}

func (s *ClickHouseSink) flush(events []*DetectionEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO detection_events (
			request_id, timestamp, policy_id, policy_version,
			status, matched_rule, message,
			prompt_preview, prompt_fingerprint, prompt_size,
			finding_types, finding_patterns, finding_categories, finding_severities, finding_scores,
			user_id, degraded_detectors, truncated, cached, latency_ms
		)
	`)
	if err != nil {
		s.logger.Error("clickhouse prepare batch failed", zap.Error(err))
		return
	}

	for _, e := range events {
		var truncatedUint8, cachedUint8 uint8
		if e.Truncated {
			truncatedUint8 = 1
		}
		if e.Cached {
			cachedUint8 = 1
		}

		if err := batch.Append(
			e.RequestID,
			e.Timestamp,
			e.PolicyID,
			e.PolicyVersion,
			e.Status,
			e.MatchedRule,
			e.Message,
			e.PromptPreview,
			e.PromptFingerprint,
			e.PromptSize,
			e.FindingTypes,
			e.FindingPatterns,
			e.FindingCategories,
			e.FindingSeverities,
			e.FindingScores,
			e.UserID,
			e.DegradedDetectors,
			truncatedUint8,
			cachedUint8,
			e.LatencyMs,
		); err != nil {
			s.logger.Error("clickhouse append event failed",
				zap.String("request_id", e.RequestID),
				zap.Error(err),
			)
		}
	}

	if err := batch.Send(); err != nil {
		s.logger.Error("clickhouse batch send failed",
			zap.Int("batch_size", len(events)),
			zap.Error(err),
		)
	}
}

// LogSink is a fallback DetectionSink for local development.
// It logs events as structured JSON to stdout via zap.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a LogSink that outputs events to the given logger.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Write(event *DetectionEvent) {
	s.logger.Info("detection_event",
		zap.String("request_id", event.RequestID),
		zap.String("policy_id", event.PolicyID),
		zap.Int64("policy_version", event.PolicyVersion),
		zap.String("status", event.Status),
		zap.String("matched_rule", event.MatchedRule),
		zap.String("message", event.Message),
		zap.String("prompt_fingerprint", event.PromptFingerprint),
		zap.Strings("finding_patterns", event.FindingPatterns),
		zap.Strings("degraded_detectors", event.DegradedDetectors),
		zap.Bool("truncated", event.Truncated),
		zap.Bool("cached", event.Cached),
		zap.Float64("latency_ms", event.LatencyMs),
		zap.String("user_id", event.UserID),
	)
}

func (s *LogSink) Close() {}
