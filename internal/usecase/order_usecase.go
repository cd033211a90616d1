package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/DRSN-tech/storefront-assistant/internal/domain"
	"github.com/DRSN-tech/storefront-assistant/pkg/e"
	"github.com/DRSN-tech/storefront-assistant/pkg/logger"
	"github.com/shopspring/decimal"
)

// OrderUseCase реализует инструменты истории и статистики заказов.
type OrderUseCase struct {
	storeAPI StoreAPI
	session  SessionReader
	logger   logger.Logger
	now      func() time.Time
}

func NewOrderUC(storeAPI StoreAPI, session SessionReader, logger logger.Logger) *OrderUseCase {
	return &OrderUseCase{
		storeAPI: storeAPI,
		session:  session,
		logger:   logger,
		now:      time.Now,
	}
}

// GetOrderHistory возвращает заказы текущего пользователя с фильтрами по дате и статусу.
func (o *OrderUseCase) GetOrderHistory(ctx context.Context, req *OrderHistoryReq) *OrderHistoryResult {
	const (
		op     = "OrderUseCase.GetOrderHistory"
		action = "Failed to get order history"
	)

	filter, err := newOrderFilter(req.Days, req.StartDate, req.EndDate, req.Status, o.now())
	if err != nil {
		return FailedOrderHistory(action, err)
	}

	orders, err := o.storeAPI.GetMyOrders(ctx)
	if err != nil {
		o.logger.Warnf("Failed to get my orders: %v", e.Wrap(op, err))
		return FailedOrderHistory(action, err)
	}

	return o.historyResult(orders, filter)
}

// GetAllOrders — то же, что история, но по всем заказам магазина. Только для администраторов.
func (o *OrderUseCase) GetAllOrders(ctx context.Context, req *AllOrdersReq) *OrderHistoryResult {
	const (
		op     = "OrderUseCase.GetAllOrders"
		action = "Failed to get orders"
	)

	filter, err := newOrderFilter(req.Days, "", "", req.Status, o.now())
	if err != nil {
		return FailedOrderHistory(action, err)
	}

	orders, err := o.storeAPI.GetAllOrders(ctx)
	if err != nil {
		o.logger.Warnf("Failed to get all orders: %v", e.Wrap(op, err))
		return FailedOrderHistory(action, err)
	}

	return o.historyResult(orders, filter)
}

func (o *OrderUseCase) historyResult(orders []domain.Order, filter orderFilter) *OrderHistoryResult {
	matched := filterOrders(orders, filter)
	spent := money(sumOrderTotals(matched))

	msg := fmt.Sprintf("Found %d orders totaling $%.2f", len(matched), spent)
	if len(matched) == 0 {
		msg = "No orders found for the given filters"
	}

	return &OrderHistoryResult{
		Envelope:    succeed(msg, matched),
		Orders:      newOrderSummaries(matched),
		TotalOrders: len(matched),
		TotalSpent:  spent,
		Filters:     filter.applied(),
	}
}

// GetOrderDetails возвращает один заказ целиком.
func (o *OrderUseCase) GetOrderDetails(ctx context.Context, req *OrderDetailsReq) *OrderDetailsResult {
	const (
		op     = "OrderUseCase.GetOrderDetails"
		action = "Failed to get order details"
	)

	id := strings.TrimSpace(req.OrderID)
	if id == "" {
		return FailedOrderDetails(action, e.ErrOrderIDRequired)
	}

	order, err := o.storeAPI.GetOrder(ctx, id)
	if err != nil {
		o.logger.Warnf("Failed to get order %s: %v", id, e.Wrap(op, err))
		return FailedOrderDetails(action, err)
	}

	return &OrderDetailsResult{
		Envelope: succeed(fmt.Sprintf("Order %s is %s, total $%.2f", order.ID, order.Status(), order.TotalPrice), order),
		Order:    newOrderView(order),
	}
}

// GetOrderStatistics считает сводку по заказам за период. Администратор видит все заказы магазина,
// остальные пользователи только свои.
func (o *OrderUseCase) GetOrderStatistics(ctx context.Context, req *OrderStatisticsReq) *OrderStatisticsResult {
	const (
		op     = "OrderUseCase.GetOrderStatistics"
		action = "Failed to get order statistics"
	)

	now := o.now()
	period, cutoff, err := periodCutoff(req.Period, now)
	if err != nil {
		return FailedOrderStatistics(action, err)
	}

	scope := ScopeMine
	fetch := o.storeAPI.GetMyOrders
	if user, ok := o.session.CurrentUser(ctx); ok && user.IsAdmin {
		scope = ScopeAll
		fetch = o.storeAPI.GetAllOrders
	}

	orders, err := fetch(ctx)
	if err != nil {
		o.logger.Warnf("Failed to get orders for statistics (scope %s): %v", scope, e.Wrap(op, err))
		return FailedOrderStatistics(action, err)
	}

	matched := filterOrders(orders, orderFilter{from: cutoff})

	res := &OrderStatisticsResult{
		Period:      period,
		Scope:       scope,
		TotalOrders: len(matched),
	}

	total := sumOrderTotals(matched)
	res.TotalSpent = money(total)
	if len(matched) > 0 {
		res.AverageOrderValue = money(total.Div(decimal.NewFromInt(int64(len(matched)))))
	}

	for i := range matched {
		if matched[i].IsDelivered {
			res.DeliveredOrders++
		}
		if matched[i].IsPaid {
			res.PaidOrders++
		}
	}
	res.DeliveryRate = percent(res.DeliveredOrders, res.TotalOrders)
	res.TopProducts = rankTopProducts(matched, topProductsLimit)
	res.MonthlyStats = monthlyHistogram(matched, now, histogramMonths)

	msg := fmt.Sprintf("%d orders, $%.2f spent, average order $%.2f", res.TotalOrders, res.TotalSpent, res.AverageOrderValue)
	if res.TotalOrders == 0 {
		msg = "No orders in the selected period"
	}
	res.Envelope = succeed(msg, matched)

	return res
}
