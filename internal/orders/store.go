package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/imrishuroy/go-order-triage/internal/aws"
)

// ErrAlreadyExists indicates a conditional create hit an existing order id.
var ErrAlreadyExists = errors.New("order already exists")

// ErrNotFound indicates a conditional update targeted a missing order.
var ErrNotFound = errors.New("order not found")

// Store encapsulates operations on the orders table.
type Store struct {
	client      aws.DynamoDBAPI
	tableName   string
	statusIndex string
	nowFunc     func() time.Time
}

// NewStore creates a new orders Store. statusIndex is the name of the GSI
// keyed by status with created_at as the range key.
func NewStore(client aws.DynamoDBAPI, tableName, statusIndex string) *Store {
	return &Store{
		client:      client,
		tableName:   tableName,
		statusIndex: statusIndex,
		nowFunc:     time.Now,
	}
}

// Create persists a new order, failing with ErrAlreadyExists if an order
// with the same id is already present.
func (s *Store) Create(ctx context.Context, order Order) error {
	item, err := attributevalue.MarshalMap(order)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(order_id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

// Get fetches an order by id with a strongly consistent read.
// Returns (nil, nil) if the order does not exist.
func (s *Store) Get(ctx context.Context, orderID string) (*Order, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		ConsistentRead: awsBool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var o Order
	if err := attributevalue.UnmarshalMap(out.Item, &o); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return &o, nil
}

// ApplyTriage sets the order's status and processing notes, requiring the
// order to exist. Returns ErrNotFound when the condition fails.
func (s *Store) ApplyTriage(ctx context.Context, orderID, newStatus, notes string) error {
	now := s.nowFunc()
	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression:         awsString("SET #s = :new, processing_notes = :n, updated_at = :ua"),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":new": &types.AttributeValueMemberS{Value: newStatus},
			":n":   &types.AttributeValueMemberS{Value: notes},
			":ua":  &types.AttributeValueMemberS{Value: now.UTC().Format(time.RFC3339Nano)},
		},
		ConditionExpression: awsString("attribute_exists(order_id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrNotFound
		}
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// Page is one page of a list result. NextToken is empty when the store
// reported no further items.
type Page struct {
	Orders    []Order
	NextToken string
	HasMore   bool
}

// ListByStatus queries the status GSI. Ordering follows the index range key
// (created_at); asc controls scan direction.
func (s *Store) ListByStatus(ctx context.Context, status string, limit int32, asc bool, token string) (*Page, error) {
	out, err := s.client.Query(ctx, &dyn.QueryInput{
		TableName:                &s.tableName,
		IndexName:                &s.statusIndex,
		KeyConditionExpression:   awsString("#s = :status"),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: status},
		},
		Limit:             &limit,
		ScanIndexForward:  awsBool(asc),
		ExclusiveStartKey: decodeToken(token),
	})
	if err != nil {
		return nil, fmt.Errorf("query status index: %w", err)
	}
	return s.buildPage(out.Items, out.LastEvaluatedKey)
}

// ListAll scans the table bounded by limit. The returned page carries the
// store's natural ordering; callers sort it as needed.
func (s *Store) ListAll(ctx context.Context, limit int32, token string) (*Page, error) {
	out, err := s.client.Scan(ctx, &dyn.ScanInput{
		TableName:         &s.tableName,
		Limit:             &limit,
		ExclusiveStartKey: decodeToken(token),
	})
	if err != nil {
		return nil, fmt.Errorf("scan orders: %w", err)
	}
	return s.buildPage(out.Items, out.LastEvaluatedKey)
}

func (s *Store) buildPage(items []map[string]types.AttributeValue, lastKey map[string]types.AttributeValue) (*Page, error) {
	page := &Page{Orders: make([]Order, 0, len(items))}
	for _, item := range items {
		var o Order
		if err := attributevalue.UnmarshalMap(item, &o); err != nil {
			return nil, fmt.Errorf("unmarshal order: %w", err)
		}
		page.Orders = append(page.Orders, o)
	}
	if len(lastKey) > 0 {
		page.HasMore = true
		page.NextToken = encodeToken(lastKey)
	}
	return page, nil
}

func awsString(s string) *string { return &s }
func awsBool(b bool) *bool       { return &b }
