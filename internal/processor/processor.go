// Package processor consumes OrderCreated events and applies the triage
// state machine. Each message in a batch is judged independently; a failure
// on one never blocks the others.
package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	lambdaevents "github.com/aws/aws-lambda-go/events"
	"github.com/imrishuroy/go-order-triage/internal/events"
	"github.com/imrishuroy/go-order-triage/internal/metrics"
	"github.com/imrishuroy/go-order-triage/internal/orders"
)

// Disposition classifies the outcome of processing one message.
type Disposition int

const (
	// DispositionOK marks a successfully processed message.
	DispositionOK Disposition = iota
	// DispositionRetryable marks a transient fault; the channel should
	// redeliver the message.
	DispositionRetryable
	// DispositionPermanent marks a message that will never succeed:
	// malformed body, unknown type, missing order. Redelivery only burns
	// receives until the redrive policy dead-letters it.
	DispositionPermanent
)

func (d Disposition) String() string {
	switch d {
	case DispositionOK:
		return "ok"
	case DispositionRetryable:
		return "retryable"
	default:
		return "permanent"
	}
}

// Result is the per-message outcome of a batch.
type Result struct {
	MessageID   string
	OrderID     string
	Disposition Disposition
	Err         error
}

// permanentError tags a fault as not worth retrying.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func permanent(err error) error { return &permanentError{err: err} }

func isPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

// Processor applies triage transitions to orders referenced by events.
type Processor struct {
	store   *orders.Store
	emitter *metrics.Emitter
}

// New creates a Processor with its dependencies injected.
func New(store *orders.Store, emitter *metrics.Emitter) *Processor {
	return &Processor{store: store, emitter: emitter}
}

// HandleBatch processes every record in the batch and returns one Result
// per record. Callers turn non-OK results into partial-batch failures.
func (p *Processor) HandleBatch(ctx context.Context, ev lambdaevents.SQSEvent) []Result {
	results := make([]Result, 0, len(ev.Records))
	for _, rec := range ev.Records {
		res := Result{MessageID: rec.MessageId, Disposition: DispositionOK}
		orderID, err := p.processRecord(ctx, rec)
		res.OrderID = orderID
		if err != nil {
			res.Err = err
			if isPermanent(err) {
				res.Disposition = DispositionPermanent
				p.emitter.Count(ctx, metrics.MetricEventsFailedPermanent, 1)
			} else {
				res.Disposition = DispositionRetryable
				p.emitter.Count(ctx, metrics.MetricEventsFailedRetryable, 1)
			}
			slog.Error("failed to process event",
				"message_id", rec.MessageId,
				"order_id", orderID,
				"disposition", res.Disposition.String(),
				"error", err)
		} else {
			p.emitter.Count(ctx, metrics.MetricEventsProcessed, 1)
		}
		results = append(results, res)
	}
	return results
}

func (p *Processor) processRecord(ctx context.Context, rec lambdaevents.SQSMessage) (string, error) {
	var env events.Envelope
	if err := json.Unmarshal([]byte(rec.Body), &env); err != nil {
		return "", permanent(fmt.Errorf("invalid message body: %w", err))
	}
	if env.Type == "" {
		return "", permanent(errors.New("message missing type"))
	}
	if env.Type != events.TypeOrderCreated {
		return "", permanent(fmt.Errorf("unknown event type %q", env.Type))
	}
	if env.Detail == nil {
		return "", permanent(errors.New("message missing detail"))
	}
	if env.Detail.ID == "" {
		return "", permanent(errors.New("event detail missing order id"))
	}

	detail := env.Detail
	var total float64
	for _, it := range detail.Items {
		total += float64(it.Qty) * it.Price
	}
	status, notes := Triage(len(detail.Items), total)

	slog.Info("triaging order",
		"order_id", detail.ID,
		"item_count", len(detail.Items),
		"total", total,
		"status", status)

	if err := p.store.ApplyTriage(ctx, detail.ID, status, notes); err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			return detail.ID, permanent(fmt.Errorf("order %s does not exist: %w", detail.ID, err))
		}
		if isValidationFault(err) {
			return detail.ID, permanent(fmt.Errorf("order %s rejected by store: %w", detail.ID, err))
		}
		return detail.ID, fmt.Errorf("update order %s: %w", detail.ID, err)
	}
	return detail.ID, nil
}
