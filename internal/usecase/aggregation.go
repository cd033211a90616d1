package usecase

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/DRSN-tech/storefront-assistant/internal/domain"
	"github.com/DRSN-tech/storefront-assistant/pkg/e"
	"github.com/shopspring/decimal"
)

const (
	dateLayout       = "2006-01-02"
	monthKeyLayout   = "2006-01"
	monthLabelLayout = "Jan 2006"

	topProductsLimit = 5
	histogramMonths  = 6
	day              = 24 * time.Hour
)

// Периоды статистики и их длительность в днях.
const (
	PeriodAll    = "all"
	Period30Days = "30days"
	Period90Days = "90days"
	PeriodYear   = "year"

	defaultPeriod = PeriodAll
	periodDays30  = 30
	periodDays90  = 90
	periodDays365 = 365
)

// orderFilter — конъюнкция необязательных условий на заказ.
type orderFilter struct {
	from   *time.Time
	to     *time.Time
	status *domain.OrderStatus
}

func (f orderFilter) match(o *domain.Order) bool {
	if f.from != nil && o.CreatedAt.Before(*f.from) {
		return false
	}
	if f.to != nil && o.CreatedAt.After(*f.to) {
		return false
	}
	if f.status != nil && o.Status() != *f.status {
		return false
	}
	return true
}

func (f orderFilter) applied() AppliedOrderFilters {
	var a AppliedOrderFilters
	a.From, a.To = f.from, f.to
	if f.status != nil {
		a.Status = string(*f.status)
	}
	return a
}

// newOrderFilter строит фильтр истории. days > 0 имеет приоритет над диапазоном дат,
// нижняя граница включительна. endDate в формате даты означает конец этого дня.
func newOrderFilter(days int, startDate, endDate, status string, now time.Time) (orderFilter, error) {
	var f orderFilter

	switch {
	case days < 0:
		return f, fmt.Errorf("%w: days must be positive", e.ErrInvalidArguments)
	case days > 0:
		from := now.Add(-time.Duration(days) * day)
		f.from = &from
	default:
		if startDate != "" {
			from, _, err := parseDate(startDate, now.Location())
			if err != nil {
				return f, err
			}
			f.from = &from
		}
		if endDate != "" {
			to, dateOnly, err := parseDate(endDate, now.Location())
			if err != nil {
				return f, err
			}
			if dateOnly {
				to = to.Add(day - time.Nanosecond)
			}
			f.to = &to
		}
		if f.from != nil && f.to != nil && f.from.After(*f.to) {
			return f, e.ErrInvalidDateRange
		}
	}

	if strings.TrimSpace(status) != "" {
		st := domain.ParseOrderStatus(status)
		f.status = &st
	}

	return f, nil
}

// parseDate принимает YYYY-MM-DD (в зоне loc) или RFC3339.
func parseDate(s string, loc *time.Location) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		return t, true, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	return time.Time{}, false, fmt.Errorf("%w: %q", e.ErrInvalidDate, s)
}

// periodCutoff переводит период статистики в нижнюю границу даты. Для all границы нет.
func periodCutoff(period string, now time.Time) (string, *time.Time, error) {
	p := strings.ToLower(strings.TrimSpace(period))
	if p == "" {
		p = defaultPeriod
	}

	var days int
	switch p {
	case PeriodAll:
		return p, nil, nil
	case Period30Days:
		days = periodDays30
	case Period90Days:
		days = periodDays90
	case PeriodYear:
		days = periodDays365
	default:
		return p, nil, fmt.Errorf("%w: %q", e.ErrInvalidPeriod, period)
	}

	cutoff := now.Add(-time.Duration(days) * day)
	return p, &cutoff, nil
}

func filterOrders(orders []domain.Order, f orderFilter) []domain.Order {
	res := make([]domain.Order, 0, len(orders))
	for i := range orders {
		if f.match(&orders[i]) {
			res = append(res, orders[i])
		}
	}
	return res
}

func sumOrderTotals(orders []domain.Order) decimal.Decimal {
	sum := decimal.Zero
	for _, o := range orders {
		sum = sum.Add(decimal.NewFromFloat(o.TotalPrice))
	}
	return sum
}

// rankTopProducts ранжирует товары по суммарному количеству. При равенстве сохраняется
// порядок первого появления товара во входных заказах.
func rankTopProducts(orders []domain.Order, limit int) []TopProduct {
	type acc struct {
		qty     int
		revenue decimal.Decimal
	}

	var names []string
	byName := make(map[string]*acc)
	for _, o := range orders {
		for _, it := range o.OrderItems {
			a, ok := byName[it.Name]
			if !ok {
				a = &acc{revenue: decimal.Zero}
				byName[it.Name] = a
				names = append(names, it.Name)
			}
			a.qty += it.Qty
			a.revenue = a.revenue.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Qty))))
		}
	}

	sort.SliceStable(names, func(i, j int) bool {
		return byName[names[i]].qty > byName[names[j]].qty
	})

	if len(names) > limit {
		names = names[:limit]
	}

	res := make([]TopProduct, 0, len(names))
	for _, n := range names {
		res = append(res, TopProduct{Name: n, Quantity: byName[n].qty, Revenue: money(byName[n].revenue)})
	}
	return res
}

// monthlyHistogram раскладывает заказы по months последним календарным месяцам,
// заканчивая текущим. Месяцы без заказов присутствуют с нулями.
func monthlyHistogram(orders []domain.Order, now time.Time, months int) []MonthlyStat {
	loc := now.Location()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, -(months - 1), 0)

	spent := make([]decimal.Decimal, months)
	stats := make([]MonthlyStat, months)
	index := make(map[string]int, months)
	for i := 0; i < months; i++ {
		m := first.AddDate(0, i, 0)
		stats[i] = MonthlyStat{Month: m.Format(monthKeyLayout), Label: m.Format(monthLabelLayout)}
		spent[i] = decimal.Zero
		index[stats[i].Month] = i
	}

	for _, o := range orders {
		i, ok := index[o.CreatedAt.In(loc).Format(monthKeyLayout)]
		if !ok {
			continue
		}
		stats[i].Orders++
		spent[i] = spent[i].Add(decimal.NewFromFloat(o.TotalPrice))
	}

	for i := range stats {
		stats[i].Spent = money(spent[i])
	}
	return stats
}

// productCriteria — локальные фильтры поверх результатов поиска.
type productCriteria struct {
	minPrice  *float64
	maxPrice  *float64
	category  string
	minRating *float64
}

func (c productCriteria) match(p *domain.Product) bool {
	if c.minPrice != nil && p.Price < *c.minPrice {
		return false
	}
	if c.maxPrice != nil && p.Price > *c.maxPrice {
		return false
	}
	if c.category != "" && !p.InCategory(c.category) {
		return false
	}
	if c.minRating != nil && p.Rating < *c.minRating {
		return false
	}
	return true
}

// filterProducts сохраняет порядок, в котором товары пришли с сервера.
func filterProducts(products []domain.Product, c productCriteria) []domain.Product {
	res := make([]domain.Product, 0, len(products))
	for i := range products {
		if c.match(&products[i]) {
			res = append(res, products[i])
		}
	}
	return res
}

// applyStockOperation считает новый остаток. Неизвестная операция трактуется как set.
func applyStockOperation(current, quantity int, operation string) (int, StockOperation) {
	switch StockOperation(strings.ToLower(strings.TrimSpace(operation))) {
	case StockAdd:
		return current + quantity, StockAdd
	case StockSubtract:
		return max(0, current-quantity), StockSubtract
	default:
		return quantity, StockSet
	}
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(1).
		InexactFloat64()
}
