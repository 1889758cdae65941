package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sqssvc "github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/imrishuroy/go-order-triage/internal/aws"
	"github.com/imrishuroy/go-order-triage/internal/orders"
)

// Publisher sends lifecycle events to the orders queue.
type Publisher struct {
	sqs      aws.SQSAPI
	queueURL string
	nowFunc  func() time.Time
}

// NewPublisher returns a Publisher bound to a queue URL.
func NewPublisher(sqsClient aws.SQSAPI, queueURL string) *Publisher {
	return &Publisher{
		sqs:      sqsClient,
		queueURL: queueURL,
		nowFunc:  time.Now,
	}
}

// PublishOrderCreated emits an OrderCreated event carrying the full order
// detail, with eventType/orderId/timestamp message attributes so the channel
// infrastructure can filter and trace without parsing bodies.
func (p *Publisher) PublishOrderCreated(ctx context.Context, order orders.Order) error {
	now := p.nowFunc().UTC()
	env := Envelope{
		Type:      TypeOrderCreated,
		Timestamp: now,
		Detail: &OrderDetail{
			ID:           order.OrderID,
			CustomerName: order.CustomerName,
			Items:        order.Items,
			CreatedAt:    order.CreatedAt,
		},
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	attrs := map[string]sqstypes.MessageAttributeValue{
		"eventType": {DataType: awsString("String"), StringValue: awsString(TypeOrderCreated)},
		"orderId":   {DataType: awsString("String"), StringValue: awsString(order.OrderID)},
		"timestamp": {DataType: awsString("String"), StringValue: awsString(now.Format(time.RFC3339))},
	}

	bodyStr := string(body)
	_, err = p.sqs.SendMessage(ctx, &sqssvc.SendMessageInput{
		QueueUrl:          &p.queueURL,
		MessageBody:       &bodyStr,
		MessageAttributes: attrs,
	})
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func awsString(s string) *string { return &s }
