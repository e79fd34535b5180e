// Package memory реализует шлюз заказов в памяти: для локальной разработки и
// тестов ядра. Шлюз ведёт собственную «серверную» копию заказов и применяет
// к ней настоящую семантику мутаций, поэтому повторный fetch после сбоя или
// успеха отражает истину сервиса, а не локальный оптимизм ядра.
package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/partsdesk/internal/domain"
)

// Имена операций для инъекции сбоев.
const (
	OpFetchOrders        = "fetchOrders"
	OpSetOfferItemRank   = "setOfferItemRank"
	OpApproveOrder       = "approveOrder"
	OpRefuseOrder        = "refuseOrder"
	OpUpdateOrderContent = "updateOrderContent"
)

// Gateway — in-memory реализация domain.OrderGateway.
type Gateway struct {
	mu       sync.RWMutex
	orders   map[string]domain.Order
	failNext map[string]error
	latency  time.Duration

	busyMu sync.Mutex
	busy   int
}

// NewGateway создаёт шлюз, заполненный переданными заказами.
func NewGateway(seed []domain.Order) *Gateway {
	g := &Gateway{
		orders:   make(map[string]domain.Order, len(seed)),
		failNext: make(map[string]error),
	}
	g.Seed(seed)
	return g
}

// Seed замещает серверную коллекцию заказов.
func (g *Gateway) Seed(orders []domain.Order) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.orders = make(map[string]domain.Order, len(orders))
	for _, order := range orders {
		g.orders[order.ID] = order.Clone()
	}
}

// FailNext заставляет следующий вызов операции op вернуть err; инъекция одноразовая.
func (g *Gateway) FailNext(op string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failNext[op] = err
}

// SetLatency задаёт искусственную задержку каждого вызова.
func (g *Gateway) SetLatency(d time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.latency = d
}

// IsBusy сообщает, есть ли запись в полёте.
func (g *Gateway) IsBusy() bool {
	g.busyMu.Lock()
	defer g.busyMu.Unlock()
	return g.busy > 0
}

// FetchOrders возвращает глубокие копии всех заказов, новые первыми.
func (g *Gateway) FetchOrders(ctx context.Context, forceFresh bool) ([]domain.Order, error) {
	if err := g.begin(ctx, OpFetchOrders, false); err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	result := make([]domain.Order, 0, len(g.orders))
	for _, order := range g.orders {
		result = append(result, order.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		ai, aerr := strconv.ParseInt(result[i].ID, 10, 64)
		bi, berr := strconv.ParseInt(result[j].ID, 10, 64)
		if aerr == nil && berr == nil {
			return ai > bi
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

// SetOfferItemRank применяет назначение или сброс лидера на серверной копии.
func (g *Gateway) SetOfferItemRank(ctx context.Context, req domain.RankRequest) error {
	if err := g.begin(ctx, OpSetOfferItemRank, true); err != nil {
		return err
	}
	defer g.done()

	g.mu.Lock()
	defer g.mu.Unlock()

	order, ok := g.findByVIN(req.VIN)
	if !ok {
		return &domain.ConflictError{Op: OpSetOfferItemRank, OrderID: req.VIN, Err: domain.ErrOrderNotFound}
	}

	var target *domain.OfferItem
	for oi := range order.Offers {
		if order.Offers[oi].ID != req.OfferID {
			continue
		}
		for ii := range order.Offers[oi].Items {
			if order.Offers[oi].Items[ii].ItemName == req.ItemName {
				target = &order.Offers[oi].Items[ii]
			}
		}
	}
	if target == nil {
		return &domain.ConflictError{Op: OpSetOfferItemRank, OrderID: order.ID, Err: domain.ErrOfferNotFound}
	}

	if req.Reset {
		target.Rank = domain.RankReserve
	} else {
		for oi := range order.Offers {
			for ii := range order.Offers[oi].Items {
				if order.Offers[oi].Items[ii].ItemName == req.ItemName {
					order.Offers[oi].Items[ii].Rank = domain.RankReserve
				}
			}
		}
		target.Rank = domain.RankLeader
	}
	if req.Admin.Price != nil {
		price := *req.Admin.Price
		target.AdminPrice = &price
	} else {
		target.AdminPrice = nil
	}
	target.AdminCurrency = req.Admin.Currency
	target.AdminComment = req.Admin.Comment

	g.orders[order.ID] = *order
	return nil
}

// ApproveOrder помечает заказ одобренным и закрытым.
func (g *Gateway) ApproveOrder(ctx context.Context, orderID string) error {
	if err := g.begin(ctx, OpApproveOrder, true); err != nil {
		return err
	}
	defer g.done()

	g.mu.Lock()
	defer g.mu.Unlock()

	order, ok := g.orders[orderID]
	if !ok {
		return &domain.ConflictError{Op: OpApproveOrder, OrderID: orderID, Err: domain.ErrOrderNotFound}
	}
	order.IsProcessed = true
	order.Status = domain.StatusClosed
	g.orders[orderID] = order
	return nil
}

// RefuseOrder аннулирует заказ с причиной.
func (g *Gateway) RefuseOrder(ctx context.Context, orderID, reason, actor string) error {
	if err := g.begin(ctx, OpRefuseOrder, true); err != nil {
		return err
	}
	defer g.done()

	g.mu.Lock()
	defer g.mu.Unlock()

	order, ok := g.orders[orderID]
	if !ok {
		return &domain.ConflictError{Op: OpRefuseOrder, OrderID: orderID, Err: domain.ErrOrderNotFound}
	}
	// Причина и актор попадают в журнал сервиса; локальная копия их не хранит.
	_ = reason
	_ = actor
	order.IsRefused = true
	order.Status = domain.StatusClosed
	g.orders[orderID] = order
	return nil
}

// UpdateOrderContent применяет правки содержимого и отклоняет некорректные.
func (g *Gateway) UpdateOrderContent(ctx context.Context, orderID string, content domain.OrderContentUpdate) error {
	if err := g.begin(ctx, OpUpdateOrderContent, true); err != nil {
		return err
	}
	defer g.done()

	g.mu.Lock()
	defer g.mu.Unlock()

	order, ok := g.orders[orderID]
	if !ok {
		return &domain.ConflictError{Op: OpUpdateOrderContent, OrderID: orderID, Err: domain.ErrOrderNotFound}
	}

	updated := order.Clone()
	updated.EditedBrand = content.Car.Brand
	updated.EditedModel = content.Car.Model
	updated.EditedYear = content.Car.Year
	updated.EditedBody = content.Car.Body
	for _, edit := range content.Items {
		for i := range updated.Items {
			if updated.Items[i].Name != edit.Name {
				continue
			}
			updated.Items[i].EditedName = edit.EditedName
			if edit.EditedQty > 0 {
				updated.Items[i].EditedQty = edit.EditedQty
			} else {
				updated.Items[i].EditedQty = 0
			}
		}
	}

	if errs := updated.ValidateInvariants(); len(errs) > 0 {
		return &domain.ConflictError{Op: OpUpdateOrderContent, OrderID: orderID, Err: errs[0]}
	}

	g.orders[orderID] = updated
	return nil
}

// findByVIN возвращает рабочую копию заказа по VIN. Вызывать под g.mu.
func (g *Gateway) findByVIN(vin string) (*domain.Order, bool) {
	for _, order := range g.orders {
		if order.VIN == vin {
			clone := order.Clone()
			return &clone, true
		}
	}
	return nil, false
}

// begin снимает одноразовую инъекцию сбоя и помечает запись в полёте.
func (g *Gateway) begin(ctx context.Context, op string, write bool) error {
	if err := ctx.Err(); err != nil {
		return domain.NewTransportError(op, err)
	}

	g.mu.Lock()
	injected, ok := g.failNext[op]
	if ok {
		delete(g.failNext, op)
	}
	latency := g.latency
	g.mu.Unlock()

	if write {
		g.busyMu.Lock()
		g.busy++
		g.busyMu.Unlock()
	}

	if latency > 0 {
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			if write {
				g.done()
			}
			return domain.NewTransportError(op, ctx.Err())
		}
	}

	if ok {
		if write {
			g.done()
		}
		return injected
	}
	return nil
}

func (g *Gateway) done() {
	g.busyMu.Lock()
	g.busy--
	g.busyMu.Unlock()
}

var _ domain.OrderGateway = (*Gateway)(nil)
