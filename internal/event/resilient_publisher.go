package event

import (
	"context"
	"sync"
	"time"

	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/logger"
)

// retryEntry is a queued event awaiting another publish attempt
type retryEntry struct {
	event   Event
	attempt int // 1-based retry attempt number
}

// ResilientPublisher wraps an Event Bus with a bounded retry queue and a
// dead-letter file for events that exhaust their retries. Callers are never
// blocked on a failing downstream: the first attempt is synchronous, every
// retry happens on the worker goroutine.
type ResilientPublisher struct {
	bus        Bus
	retryQueue chan retryEntry
	maxRetries int
	retryDelay time.Duration
	deadLetter *DeadLetterWriter
	shutdown   chan struct{}
	once       sync.Once
	wg         sync.WaitGroup
}

// NewResilientPublisher creates a publisher and starts its retry worker.
func NewResilientPublisher(bus Bus, maxRetries int, retryDelay time.Duration, deadLetterPath string) (*ResilientPublisher, error) {
	dl, err := NewDeadLetterWriter(deadLetterPath)
	if err != nil {
		return nil, err
	}

	p := &ResilientPublisher{
		bus:        bus,
		retryQueue: make(chan retryEntry, RetryQueueBufferSize),
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		deadLetter: dl,
		shutdown:   make(chan struct{}),
	}

	p.wg.Add(1)
	go p.retryWorker()

	return p, nil
}

// PublishWithRetry attempts to publish an event. On failure the event is
// queued for background retries; a full queue goes straight to dead-letter.
func (p *ResilientPublisher) PublishWithRetry(ctx context.Context, event Event) {
	err := p.bus.Publish(ctx, event)
	if err == nil {
		return
	}

	logger.Warn(LogMsgEventPublishFailed,
		"event_type", event.Type,
		"error", err)

	select {
	case p.retryQueue <- retryEntry{event: event, attempt: 1}:
	default:
		logger.Warn(LogMsgRetryQueueFull, "event_type", event.Type)
		if dlErr := p.deadLetter.Write(event, 0, err); dlErr != nil {
			logger.Error(LogMsgDeadLetterWriteFailed, "error", dlErr)
		}
	}
}

// Publish implements Bus. It always returns nil: failures are handled by the
// retry worker, not the caller.
func (p *ResilientPublisher) Publish(ctx context.Context, event Event) error {
	p.PublishWithRetry(ctx, event)
	return nil
}

// Subscribe delegates to the inner bus
func (p *ResilientPublisher) Subscribe(eventType Type, handler Handler) {
	p.bus.Subscribe(eventType, handler)
}

func (p *ResilientPublisher) retryWorker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.shutdown:
			p.drainQueue()
			return
		case entry := <-p.retryQueue:
			p.processEntry(entry)
		}
	}
}

func (p *ResilientPublisher) processEntry(entry retryEntry) {
	delay := CalculateRetryDelay(p.retryDelay, entry.attempt)
	timer := time.NewTimer(delay)
	select {
	case <-timer.C:
	case <-p.shutdown:
		// Shutting down: make one last immediate attempt below.
		timer.Stop()
	}

	// Detached context: the original request context is long gone.
	err := p.bus.Publish(context.Background(), entry.event)
	if err == nil {
		logger.Info(LogMsgEventRetrySucceeded,
			"event_type", entry.event.Type,
			"attempt", entry.attempt)
		return
	}

	if entry.attempt >= p.maxRetries {
		logger.Warn(LogMsgEventRetryExhausted,
			"event_type", entry.event.Type,
			"attempts", entry.attempt)
		if dlErr := p.deadLetter.Write(entry.event, entry.attempt, err); dlErr != nil {
			logger.Error(LogMsgDeadLetterWriteFailed, "error", dlErr)
		}
		return
	}

	logger.Warn(LogMsgEventRetryFailed,
		"event_type", entry.event.Type,
		"attempt", entry.attempt,
		"error", err)

	select {
	case p.retryQueue <- retryEntry{event: entry.event, attempt: entry.attempt + 1}:
	default:
		if dlErr := p.deadLetter.Write(entry.event, entry.attempt, err); dlErr != nil {
			logger.Error(LogMsgDeadLetterWriteFailed, "error", dlErr)
		}
	}
}

// drainQueue makes a final attempt at every queued event, dead-lettering the
// ones that still fail.
func (p *ResilientPublisher) drainQueue() {
	drained := 0
	for {
		select {
		case entry := <-p.retryQueue:
			drained++
			if err := p.bus.Publish(context.Background(), entry.event); err != nil {
				if dlErr := p.deadLetter.Write(entry.event, entry.attempt, err); dlErr != nil {
					logger.Error(LogMsgDeadLetterWriteFailed, "error", dlErr)
				}
			}
		default:
			if drained > 0 {
				logger.Info(LogMsgQueueDrainedShutdown, "count", drained)
			}
			return
		}
	}
}

// Shutdown stops the retry worker, draining any queued events first. Waits
// until the worker exits or the context expires.
func (p *ResilientPublisher) Shutdown(ctx context.Context) error {
	p.once.Do(func() { close(p.shutdown) })

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return p.deadLetter.Close()
	case <-ctx.Done():
		logger.Warn(LogMsgShutdownTimeout)
		return ctx.Err()
	}
}
