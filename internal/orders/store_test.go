package orders

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mockDynamo is a simple in-memory stand-in for the orders table and its
// status GSI. Items are keyed by order_id.
type mockDynamo struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue

	queryCalls int
	scanCalls  int
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{items: map[string]map[string]types.AttributeValue{}}
}

func itemString(item map[string]types.AttributeValue, attr string) string {
	if v, ok := item[attr].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pk := itemString(params.Item, "order_id")
	if pk == "" {
		return nil, errors.New("no order_id in put item")
	}
	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists(order_id)" {
		if _, exists := m.items[pk]; exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	m.items[pk] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pk := itemString(params.Key, "order_id")
	item, ok := m.items[pk]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockDynamo) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pk := itemString(params.Key, "order_id")
	item, exists := m.items[pk]
	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_exists(order_id)" && !exists {
		return nil, &types.ConditionalCheckFailedException{}
	}
	if !exists {
		return nil, errors.New("item not found")
	}
	if v, ok := params.ExpressionAttributeValues[":new"]; ok {
		item["status"] = v
	}
	if v, ok := params.ExpressionAttributeValues[":n"]; ok {
		item["processing_notes"] = v
	}
	if v, ok := params.ExpressionAttributeValues[":ua"]; ok {
		item["updated_at"] = v
	}
	m.items[pk] = item
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}

// sortedItems returns all items ordered by the given string attribute.
func (m *mockDynamo) sortedItems(attr string, asc bool) []map[string]types.AttributeValue {
	out := make([]map[string]types.AttributeValue, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if asc {
			return itemString(out[i], attr) < itemString(out[j], attr)
		}
		return itemString(out[i], attr) > itemString(out[j], attr)
	})
	return out
}

func paginate(all []map[string]types.AttributeValue, startKey map[string]types.AttributeValue, limit int32) ([]map[string]types.AttributeValue, map[string]types.AttributeValue) {
	start := 0
	if len(startKey) > 0 {
		resume := itemString(startKey, "order_id")
		for i, item := range all {
			if itemString(item, "order_id") == resume {
				start = i + 1
				break
			}
		}
	}
	end := start + int(limit)
	if end > len(all) {
		end = len(all)
	}
	page := all[start:end]
	var last map[string]types.AttributeValue
	if end < len(all) && len(page) > 0 {
		tail := page[len(page)-1]
		last = map[string]types.AttributeValue{
			"order_id":   tail["order_id"],
			"status":     tail["status"],
			"created_at": tail["created_at"],
		}
	}
	return page, last
}

func (m *mockDynamo) Query(ctx context.Context, params *dyn.QueryInput, optFns ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryCalls++
	want := ""
	if v, ok := params.ExpressionAttributeValues[":status"].(*types.AttributeValueMemberS); ok {
		want = v.Value
	}
	asc := params.ScanIndexForward == nil || *params.ScanIndexForward
	all := m.sortedItems("created_at", asc)
	matched := make([]map[string]types.AttributeValue, 0, len(all))
	for _, item := range all {
		if itemString(item, "status") == want {
			matched = append(matched, item)
		}
	}
	limit := int32(len(matched))
	if params.Limit != nil {
		limit = *params.Limit
	}
	page, last := paginate(matched, params.ExclusiveStartKey, limit)
	return &dyn.QueryOutput{Items: page, LastEvaluatedKey: last}, nil
}

func (m *mockDynamo) Scan(ctx context.Context, params *dyn.ScanInput, optFns ...func(*dyn.Options)) (*dyn.ScanOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scanCalls++
	all := m.sortedItems("order_id", true)
	limit := int32(len(all))
	if params.Limit != nil {
		limit = *params.Limit
	}
	page, last := paginate(all, params.ExclusiveStartKey, limit)
	return &dyn.ScanOutput{Items: page, LastEvaluatedKey: last}, nil
}

func testOrder(id, status string, createdAt time.Time) Order {
	return Order{
		OrderID:      id,
		CustomerName: "Alice",
		Items:        []Item{{SKU: "x", Qty: 1, Price: 10}},
		Status:       status,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

func seed(t *testing.T, m *mockDynamo, o Order) {
	t.Helper()
	item, err := attributevalue.MarshalMap(o)
	if err != nil {
		t.Fatalf("marshal order: %v", err)
	}
	m.items[o.OrderID] = item
}

func TestCreate_ConditionalOnOrderID(t *testing.T) {
	mock := newMockDynamo()
	store := NewStore(mock, "orders", "status-index")
	ctx := context.Background()

	o := testOrder("order-1", StatusPending, time.Now().UTC())
	if err := store.Create(ctx, o); err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	err := store.Create(ctx, o)
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGet_FoundAndMissing(t *testing.T) {
	mock := newMockDynamo()
	store := NewStore(mock, "orders", "status-index")
	ctx := context.Background()

	created := time.Now().UTC().Round(time.Second)
	seed(t, mock, testOrder("order-2", StatusPending, created))

	got, err := store.Get(ctx, "order-2")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got == nil {
		t.Fatal("expected order, got nil")
	}
	if got.Status != StatusPending || got.CustomerName != "Alice" {
		t.Fatalf("unexpected order: %+v", got)
	}

	missing, err := store.Get(ctx, "nope")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing order, got %+v", missing)
	}
}

func TestApplyTriage_SetsStatusAndNotes(t *testing.T) {
	mock := newMockDynamo()
	store := NewStore(mock, "orders", "status-index")
	ctx := context.Background()

	seed(t, mock, testOrder("order-3", StatusPending, time.Now().UTC()))

	if err := store.ApplyTriage(ctx, "order-3", StatusConfirmed, "Order processed successfully."); err != nil {
		t.Fatalf("ApplyTriage error: %v", err)
	}

	item := mock.items["order-3"]
	if itemString(item, "status") != StatusConfirmed {
		t.Fatalf("status not updated, got %q", itemString(item, "status"))
	}
	if itemString(item, "processing_notes") != "Order processed successfully." {
		t.Fatalf("notes not updated, got %q", itemString(item, "processing_notes"))
	}
	if itemString(item, "updated_at") == "" {
		t.Fatal("updated_at not set")
	}
}

func TestApplyTriage_MissingOrder(t *testing.T) {
	mock := newMockDynamo()
	store := NewStore(mock, "orders", "status-index")

	err := store.ApplyTriage(context.Background(), "ghost", StatusConfirmed, "n")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListByStatus_FiltersAndOrders(t *testing.T) {
	mock := newMockDynamo()
	store := NewStore(mock, "orders", "status-index")
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seed(t, mock, testOrder("a", StatusPendingReview, base))
	seed(t, mock, testOrder("b", StatusConfirmed, base.Add(time.Minute)))
	seed(t, mock, testOrder("c", StatusPendingReview, base.Add(2*time.Minute)))

	page, err := store.ListByStatus(ctx, StatusPendingReview, 10, true, "")
	if err != nil {
		t.Fatalf("ListByStatus error: %v", err)
	}
	if len(page.Orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(page.Orders))
	}
	for _, o := range page.Orders {
		if o.Status != StatusPendingReview {
			t.Fatalf("wrong status in result: %s", o.Status)
		}
	}
	if page.Orders[0].OrderID != "a" || page.Orders[1].OrderID != "c" {
		t.Fatalf("wrong ascending order: %s, %s", page.Orders[0].OrderID, page.Orders[1].OrderID)
	}

	desc, err := store.ListByStatus(ctx, StatusPendingReview, 10, false, "")
	if err != nil {
		t.Fatalf("ListByStatus error: %v", err)
	}
	if desc.Orders[0].OrderID != "c" {
		t.Fatalf("expected newest first, got %s", desc.Orders[0].OrderID)
	}
	if mock.scanCalls != 0 {
		t.Fatalf("status filter must use the index, not a scan (%d scans)", mock.scanCalls)
	}
}

func TestListAll_PagesWithToken(t *testing.T) {
	mock := newMockDynamo()
	store := NewStore(mock, "orders", "status-index")
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"o1", "o2", "o3"} {
		seed(t, mock, testOrder(id, StatusPending, base))
	}

	first, err := store.ListAll(ctx, 2, "")
	if err != nil {
		t.Fatalf("ListAll error: %v", err)
	}
	if len(first.Orders) != 2 || !first.HasMore || first.NextToken == "" {
		t.Fatalf("unexpected first page: %+v", first)
	}

	second, err := store.ListAll(ctx, 2, first.NextToken)
	if err != nil {
		t.Fatalf("ListAll error: %v", err)
	}
	if len(second.Orders) != 1 || second.HasMore {
		t.Fatalf("unexpected second page: %+v", second)
	}
	if second.Orders[0].OrderID == first.Orders[0].OrderID {
		t.Fatal("second page repeated the first page")
	}
}

func TestListAll_MalformedTokenRestarts(t *testing.T) {
	mock := newMockDynamo()
	store := NewStore(mock, "orders", "status-index")
	ctx := context.Background()

	seed(t, mock, testOrder("o1", StatusPending, time.Now().UTC()))

	page, err := store.ListAll(ctx, 10, "%%%not-base64%%%")
	if err != nil {
		t.Fatalf("malformed token must not error, got %v", err)
	}
	if len(page.Orders) != 1 {
		t.Fatalf("expected restart from beginning, got %d orders", len(page.Orders))
	}
}
