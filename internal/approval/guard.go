package approval

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/partsdesk/internal/domain"
)

// Approver — часть store, нужная охраннику одобрения.
type Approver interface {
	Order(id string) (domain.Order, error)
	ApproveOrder(ctx context.Context, orderID string) error
}

// Decision — результат запроса на одобрение. При непустом Missing одобрение
// не выполнено: оператору показывается подтверждение со списком непокрытых
// позиций, и только явный override ведёт к ConfirmApproval.
type Decision struct {
	Approved bool
	Missing  []string
}

// Guard проверяет покрытие лидерами перед одобрением заказа.
type Guard struct {
	store  Approver
	logger *log.Entry
}

// NewGuard создаёт охранник одобрения поверх store.
func NewGuard(store Approver, logger *log.Entry) *Guard {
	if logger == nil {
		logger = log.WithField("component", "approval")
	}
	return &Guard{store: store, logger: logger}
}

// RequestApproval одобряет заказ сразу при полном покрытии, иначе возвращает
// решение-подсказку со списком непокрытых позиций.
func (g *Guard) RequestApproval(ctx context.Context, orderID string) (Decision, error) {
	order, err := g.store.Order(orderID)
	if err != nil {
		return Decision{}, err
	}

	missing := MissingCoverage(order)
	if len(missing) > 0 {
		g.logger.WithFields(log.Fields{
			"order_id": orderID,
			"missing":  missing,
		}).Info("approval blocked: items without leader")
		return Decision{Approved: false, Missing: missing}, nil
	}

	if err := g.store.ApproveOrder(ctx, orderID); err != nil {
		return Decision{}, err
	}
	return Decision{Approved: true}, nil
}

// ConfirmApproval — явный override оператора: одобряет несмотря на пробелы покрытия.
func (g *Guard) ConfirmApproval(ctx context.Context, orderID string) error {
	g.logger.WithField("order_id", orderID).Info("approval confirmed by operator override")
	return g.store.ApproveOrder(ctx, orderID)
}
