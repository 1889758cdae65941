package handlers

import (
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/imrishuroy/go-order-triage/internal/apierr"
	"github.com/imrishuroy/go-order-triage/internal/aws"
	"github.com/imrishuroy/go-order-triage/internal/events"
	"github.com/imrishuroy/go-order-triage/internal/metrics"
	"github.com/imrishuroy/go-order-triage/internal/orders"
	"github.com/imrishuroy/go-order-triage/internal/validation"
)

// List parameter bounds.
const (
	defaultListLimit = 10
	maxListLimit     = 100
)

// HandlerConfig groups dependencies for the orders handlers.
type HandlerConfig struct {
	DynamoDBClient   aws.DynamoDBAPI
	SQSClient        aws.SQSAPI
	CloudWatchClient aws.CloudWatchAPI
	OrdersTable      string
	StatusIndex      string
	QueueURL         string
	MetricsNamespace string
}

// orderView is an order enriched with read-time derived fields.
type orderView struct {
	orders.Order
	OrderTotal float64 `json:"orderTotal"`
	ItemCount  int     `json:"itemCount"`
}

func newOrderView(o orders.Order) orderView {
	return orderView{Order: o, OrderTotal: o.Total(), ItemCount: len(o.Items)}
}

// RegisterOrdersRoutes registers the order intake and query routes.
func RegisterOrdersRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()
	store := orders.NewStore(cfg.DynamoDBClient, cfg.OrdersTable, cfg.StatusIndex)
	publisher := events.NewPublisher(cfg.SQSClient, cfg.QueueURL)
	emitter := metrics.NewEmitter(cfg.CloudWatchClient, cfg.MetricsNamespace)

	r.POST("/orders", createOrder(store, publisher, emitter, v))
	r.GET("/orders/:id", getOrder(store, emitter))
	r.GET("/orders", listOrders(store, emitter))
}

func createOrder(store *orders.Store, publisher *events.Publisher, emitter *metrics.Emitter, v *validatorv10.Validate) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.CreateOrderRequest
		if verr := validation.BindAndValidate(c, &req, v); verr != nil {
			writeError(c, verr)
			return
		}

		now := time.Now().UTC()
		order := orders.Order{
			OrderID:      uuid.NewString(),
			CustomerName: strings.TrimSpace(req.CustomerName),
			Items:        toItems(req.Items),
			Status:       orders.StatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := store.Create(ctx, order); err != nil {
			emitter.Count(ctx, metrics.MetricOrderCreateFailed, 1)
			writeError(c, apierr.From(err))
			return
		}

		if err := publisher.PublishOrderCreated(ctx, order); err != nil {
			// The order is already persisted; it stays PENDING until the
			// event is re-emitted by some other means.
			slog.Error("order persisted but event publish failed",
				"order_id", order.OrderID, "error", err)
			emitter.Count(ctx, metrics.MetricOrderCreateFailed, 1)
			writeError(c, apierr.Internal("order stored but event publish failed", err))
			return
		}

		emitter.Count(ctx, metrics.MetricOrderCreated, 1)
		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"data": gin.H{
				"id":        order.OrderID,
				"status":    order.Status,
				"createdAt": order.CreatedAt,
			},
		})
	}
}

func getOrder(store *orders.Store, emitter *metrics.Emitter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		id := c.Param("id")
		if _, err := uuid.Parse(id); err != nil {
			writeError(c, apierr.Validation("order id is not a valid identifier",
				map[string]string{"id": "must be a UUID"}))
			return
		}

		order, err := store.Get(ctx, id)
		if err != nil {
			emitter.Count(ctx, metrics.MetricOrderQueryFailed, 1)
			writeError(c, apierr.From(err))
			return
		}
		if order == nil {
			writeError(c, apierr.NotFound("order not found"))
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": newOrderView(*order)})
	}
}

func listOrders(store *orders.Store, emitter *metrics.Emitter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		status := c.Query("status")
		if !orders.ValidStatus(status) {
			// invalid filter values are ignored, not rejected
			status = ""
		}
		limit := parseLimit(c.Query("limit"))
		asc := strings.EqualFold(c.Query("sortOrder"), "asc")
		token := c.Query("nextToken")

		var (
			page *orders.Page
			err  error
		)
		if status != "" {
			// index-native ordering by created_at
			page, err = store.ListByStatus(ctx, status, int32(limit), asc, token)
		} else {
			page, err = store.ListAll(ctx, int32(limit), token)
		}
		if err != nil {
			emitter.Count(ctx, metrics.MetricOrderQueryFailed, 1)
			writeError(c, apierr.From(err))
			return
		}

		if status == "" {
			// page-local sort only; ordering does not hold across pages
			sortByCreatedAt(page.Orders, asc)
		}

		views := make([]orderView, 0, len(page.Orders))
		for _, o := range page.Orders {
			views = append(views, newOrderView(o))
		}

		sortOrder := "desc"
		if asc {
			sortOrder = "asc"
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"orders": views,
				"pagination": gin.H{
					"limit":     limit,
					"count":     len(views),
					"hasMore":   page.HasMore,
					"nextToken": page.NextToken,
				},
				"filters": gin.H{
					"status":    status,
					"sortOrder": sortOrder,
				},
			},
		})
	}
}

func toItems(reqItems []validation.ItemRequest) []orders.Item {
	items := make([]orders.Item, 0, len(reqItems))
	for _, it := range reqItems {
		items = append(items, orders.Item{SKU: it.SKU, Qty: it.Qty, Price: it.Price})
	}
	return items
}

func parseLimit(raw string) int {
	if raw == "" {
		return defaultListLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultListLimit
	}
	if n < 1 {
		return 1
	}
	if n > maxListLimit {
		return maxListLimit
	}
	return n
}

func sortByCreatedAt(list []orders.Order, asc bool) {
	sort.SliceStable(list, func(i, j int) bool {
		if asc {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}
