package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/imrishuroy/go-order-triage/internal/aws"
	"github.com/imrishuroy/go-order-triage/internal/logging"
	"github.com/imrishuroy/go-order-triage/internal/metrics"
	"github.com/imrishuroy/go-order-triage/internal/orders"
	"github.com/imrishuroy/go-order-triage/internal/processor"
)

func newHandler(p *processor.Processor) func(context.Context, events.SQSEvent) (events.SQSEventResponse, error) {
	return func(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
		results := p.HandleBatch(ctx, ev)

		// Report every non-OK message. SQS redelivers them; messages that
		// keep failing are dead-lettered by the queue's redrive policy.
		var resp events.SQSEventResponse
		for _, res := range results {
			if res.Disposition != processor.DispositionOK {
				resp.BatchItemFailures = append(resp.BatchItemFailures,
					events.SQSBatchItemFailure{ItemIdentifier: res.MessageID})
			}
		}
		return resp, nil
	}
}

func main() {
	logging.Init()

	clients, err := aws.NewAWSClients(context.Background())
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	store := orders.NewStore(clients.DynamoDB, os.Getenv("ORDERS_TABLE"), statusIndex())
	emitter := metrics.NewEmitter(clients.CloudWatch, "OrderTriage")
	p := processor.New(store, emitter)

	handler := newHandler(p)

	// If RUN_LOCAL=true, simulate a single SQS event for local testing.
	if os.Getenv("RUN_LOCAL") == "true" {
		body := os.Getenv("LOCAL_SQS_BODY")
		if body == "" {
			body = `{"type":"OrderCreated","timestamp":"2026-01-01T00:00:00Z","detail":{"id":"local-order-1","customerName":"local","items":[{"sku":"x","qty":1,"price":10}],"createdAt":"2026-01-01T00:00:00Z"}}`
		}
		ev := events.SQSEvent{
			Records: []events.SQSMessage{
				{MessageId: "local-1", Body: body},
			},
		}
		resp, err := handler(context.Background(), ev)
		if err != nil {
			log.Fatalf("local handler error: %v", err)
		}
		log.Printf("local run: %d failed of %d", len(resp.BatchItemFailures), len(ev.Records))
		return
	}

	lambda.Start(handler)
}

func statusIndex() string {
	if v := os.Getenv("STATUS_INDEX"); v != "" {
		return v
	}
	return "status-index"
}
