// Package metrics emits operation counters to CloudWatch. Emission is
// best-effort: a metrics failure is logged and never fails the operation
// that triggered it.
package metrics

import (
	"context"
	"log/slog"
	"time"

	cw "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/imrishuroy/go-order-triage/internal/aws"
)

// Metric names.
const (
	MetricOrderCreated          = "OrderCreated"
	MetricOrderCreateFailed     = "OrderCreateFailed"
	MetricOrderQueryFailed      = "OrderQueryFailed"
	MetricEventsProcessed       = "EventsProcessed"
	MetricEventsFailedRetryable = "EventsFailedRetryable"
	MetricEventsFailedPermanent = "EventsFailedPermanent"
)

// Emitter publishes count metrics under a single namespace.
// A nil Emitter is valid and drops everything.
type Emitter struct {
	client    aws.CloudWatchAPI
	namespace string
	nowFunc   func() time.Time
}

// NewEmitter returns an Emitter bound to a namespace.
func NewEmitter(client aws.CloudWatchAPI, namespace string) *Emitter {
	return &Emitter{
		client:    client,
		namespace: namespace,
		nowFunc:   time.Now,
	}
}

// Count adds n to the named counter.
func (e *Emitter) Count(ctx context.Context, name string, n float64) {
	if e == nil || e.client == nil {
		return
	}
	now := e.nowFunc().UTC()
	_, err := e.client.PutMetricData(ctx, &cw.PutMetricDataInput{
		Namespace: &e.namespace,
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: &name,
				Timestamp:  &now,
				Unit:       cwtypes.StandardUnitCount,
				Value:      &n,
			},
		},
	})
	if err != nil {
		slog.Warn("failed to emit metric", "metric", name, "error", err)
	}
}
