package metrics

import (
	"context"
	"sync"
	"testing"

	cw "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
)

type mockCloudWatch struct {
	mu    sync.Mutex
	names []string
}

func (m *mockCloudWatch) PutMetricData(ctx context.Context, params *cw.PutMetricDataInput, optFns ...func(*cw.Options)) (*cw.PutMetricDataOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range params.MetricData {
		m.names = append(m.names, *d.MetricName)
	}
	return &cw.PutMetricDataOutput{}, nil
}

func TestEmitter_Count(t *testing.T) {
	mock := &mockCloudWatch{}
	e := NewEmitter(mock, "OrderTriage")

	e.Count(context.Background(), MetricOrderCreated, 1)
	e.Count(context.Background(), MetricEventsProcessed, 1)

	if len(mock.names) != 2 {
		t.Fatalf("expected 2 metrics, got %d", len(mock.names))
	}
	if mock.names[0] != MetricOrderCreated || mock.names[1] != MetricEventsProcessed {
		t.Fatalf("unexpected metric names: %v", mock.names)
	}
}

func TestEmitter_NilSafe(t *testing.T) {
	var e *Emitter
	// must not panic
	e.Count(context.Background(), MetricOrderCreated, 1)

	empty := NewEmitter(nil, "OrderTriage")
	empty.Count(context.Background(), MetricOrderCreated, 1)
}
