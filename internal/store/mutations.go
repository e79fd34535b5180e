package store

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/partsdesk/internal/domain"
)

// Refresh загружает полную коллекцию заказов и целиком замещает локальный
// снапшот. Пользовательское обновление (silent=false) выполняется всегда и
// поднимает индикатор загрузки; фоновое подавляется планировщиком, сюда
// доходит уже решённый вызов.
func (s *Store) Refresh(ctx context.Context, silent bool) error {
	kind := "background"
	if !silent {
		kind = "user"
		s.mu.Lock()
		s.loading = true
		s.mu.Unlock()
		defer func() {
			s.mu.Lock()
			s.loading = false
			s.mu.Unlock()
		}()
	}

	start := s.now()
	orders, err := s.gateway.FetchOrders(ctx, !silent)
	s.metrics.RecordGatewayCall("fetchOrders", s.now().Sub(start))
	if err != nil {
		s.metrics.RecordRefresh(kind, "error")
		s.logError("refresh failed", err, log.Fields{"kind": kind})
		return err
	}

	s.mu.Lock()
	s.orders = orders
	s.lastRefresh = s.now()
	s.mu.Unlock()

	s.metrics.RecordRefresh(kind, "ok")
	s.metrics.RecordSnapshotSize(len(orders))
	s.logger.WithFields(log.Fields{"kind": kind, "orders": len(orders)}).Debug("snapshot replaced")
	return nil
}

// SetRank назначает позицию предложения лидером по строке заказа либо, если
// она уже лидер, сбрасывает её в резерв (toggle-off). При назначении все
// остальные позиции с тем же именем в заказе понижаются до резерва — инвариант
// единственного лидера поддерживается здесь, а не дисциплиной вызывающих.
// Назначения оператора (цена/валюта/комментарий) пишутся в позицию в обоих
// направлениях.
func (s *Store) SetRank(ctx context.Context, vin, itemName, offerID string, admin domain.AdminOfferFields) error {
	s.stampInteraction()

	s.mu.Lock()
	order := s.findByVIN(vin)
	if order == nil {
		s.mu.Unlock()
		s.logger.WithField("vin", vin).Warn("set rank: order not found")
		return domain.ErrOrderNotFound
	}

	target := findOfferItem(order, offerID, itemName)
	if target == nil {
		s.mu.Unlock()
		s.logger.WithFields(log.Fields{"vin": vin, "offer_id": offerID, "item": itemName}).Warn("set rank: offer item not found")
		return domain.ErrOfferNotFound
	}

	reset := target.Rank.IsLeader()
	if reset {
		target.Rank = domain.RankReserve
	} else {
		for oi := range order.Offers {
			for ii := range order.Offers[oi].Items {
				if order.Offers[oi].Items[ii].ItemName == itemName {
					order.Offers[oi].Items[ii].Rank = domain.RankReserve
				}
			}
		}
		target.Rank = domain.RankLeader
	}
	applyAdminFields(target, admin)
	s.mu.Unlock()

	req := domain.RankRequest{
		VIN:      vin,
		ItemName: itemName,
		OfferID:  offerID,
		Admin:    admin,
		Reset:    reset,
	}
	if err := s.confirm(ctx, "setRank", func() error {
		return s.gateway.SetOfferItemRank(ctx, req)
	}); err != nil {
		return err
	}

	action := "leader assigned"
	if reset {
		action = "leader reset"
	}
	s.logInfo(fmt.Sprintf("%s: order %s, item %q, offer %s", action, vin, itemName, offerID), log.Fields{
		"vin":      vin,
		"item":     itemName,
		"offer_id": offerID,
		"reset":    reset,
	})
	return nil
}

// ApproveOrder оптимистично помечает заказ одобренным и закрытым, сразу
// показывает уведомление об успехе и лишь потом подтверждает на сервисе.
func (s *Store) ApproveOrder(ctx context.Context, orderID string) error {
	s.stampInteraction()

	s.mu.Lock()
	order := s.findByID(orderID)
	if order == nil {
		s.mu.Unlock()
		s.logger.WithField("order_id", orderID).Warn("approve: order not found")
		return domain.ErrOrderNotFound
	}
	order.IsProcessed = true
	order.Status = domain.StatusClosed
	s.mu.Unlock()

	// Уведомление живёт своим TTL независимо от исхода подтверждения.
	s.notify(NotificationSuccess, fmt.Sprintf("Заказ №%s одобрен", orderID))

	if err := s.confirm(ctx, "approveOrder", func() error {
		return s.gateway.ApproveOrder(ctx, orderID)
	}); err != nil {
		return err
	}

	s.logInfo(fmt.Sprintf("order %s approved", orderID), log.Fields{"order_id": orderID})
	return nil
}

// RefuseOrder — единственная неоптимистичная мутация: причина аннулирования
// должна дойти до сервиса раньше, чем локальное состояние покажет успех.
// При сбое локальный снапшот не меняется и заказ остаётся открытым для
// повторной попытки.
func (s *Store) RefuseOrder(ctx context.Context, orderID, reason string) error {
	s.stampInteraction()

	s.mu.RLock()
	found := false
	for i := range s.orders {
		if s.orders[i].ID == orderID {
			found = true
			break
		}
	}
	s.mu.RUnlock()
	if !found {
		s.logger.WithField("order_id", orderID).Warn("refuse: order not found")
		return domain.ErrOrderNotFound
	}

	start := s.now()
	err := s.gateway.RefuseOrder(ctx, orderID, reason, s.actor)
	s.metrics.RecordGatewayCall("refuseOrder", s.now().Sub(start))
	if err != nil {
		s.metrics.RecordMutation("refuseOrder", "error")
		s.logError("refuse failed", err, log.Fields{"order_id": orderID})
		return err
	}

	s.mu.Lock()
	if order := s.findByID(orderID); order != nil {
		order.IsRefused = true
		order.Status = domain.StatusClosed
	}
	s.mu.Unlock()

	s.metrics.RecordMutation("refuseOrder", "ok")
	s.logInfo(fmt.Sprintf("order %s refused: %s", orderID, reason), log.Fields{"order_id": orderID})
	return nil
}

// UpdateOrderFields применяет правки администратора по автомобилю и позициям
// локально, затем подтверждает на сервисе. nil означает успех — вызывающая
// сторона выходит из режима редактирования; ошибка оставляет режим открытым,
// а снапшот пересинхронизируется тихим refresh.
func (s *Store) UpdateOrderFields(ctx context.Context, orderID string, car domain.CarEdit, items []domain.ItemEdit) error {
	s.stampInteraction()

	s.mu.Lock()
	order := s.findByID(orderID)
	if order == nil {
		s.mu.Unlock()
		s.logger.WithField("order_id", orderID).Warn("update fields: order not found")
		return domain.ErrOrderNotFound
	}
	applyContentEdits(order, car, items)
	s.mu.Unlock()

	content := domain.OrderContentUpdate{Car: car, Items: items}
	if err := s.confirm(ctx, "updateOrderFields", func() error {
		return s.gateway.UpdateOrderContent(ctx, orderID, content)
	}); err != nil {
		return err
	}

	s.logInfo(fmt.Sprintf("order %s content updated", orderID), log.Fields{"order_id": orderID, "items": len(items)})
	return nil
}

// confirm выполняет подтверждение уже применённой оптимистичной мутации.
// Сбой означает неизвестный исход на сервисе, поэтому восстановление всегда
// одно — принудительный тихий refresh вместо частичного отката.
func (s *Store) confirm(ctx context.Context, op string, call func() error) error {
	start := s.now()
	err := call()
	s.metrics.RecordGatewayCall(op, s.now().Sub(start))
	if err != nil {
		s.metrics.RecordMutation(op, "error")
		s.logError(op+" failed", err, nil)
		s.forceSilentRefresh(ctx)
		return err
	}
	s.metrics.RecordMutation(op, "ok")
	return nil
}

// forceSilentRefresh сбрасывает локальный оптимизм свежей истиной сервиса.
// Ошибка здесь уже залогирована самим Refresh, продолжать нечем.
func (s *Store) forceSilentRefresh(ctx context.Context) {
	if err := s.Refresh(ctx, true); err != nil {
		s.logger.WithError(err).Warn("recovery refresh failed, snapshot may be stale")
	}
}

// findByID возвращает указатель на заказ в снапшоте. Вызывать под s.mu.
func (s *Store) findByID(id string) *domain.Order {
	for i := range s.orders {
		if s.orders[i].ID == id {
			return &s.orders[i]
		}
	}
	return nil
}

// findByVIN возвращает указатель на заказ в снапшоте. Вызывать под s.mu.
func (s *Store) findByVIN(vin string) *domain.Order {
	for i := range s.orders {
		if s.orders[i].VIN == vin {
			return &s.orders[i]
		}
	}
	return nil
}

// findOfferItem ищет позицию предложения по паре (offerID, itemName).
func findOfferItem(order *domain.Order, offerID, itemName string) *domain.OfferItem {
	for oi := range order.Offers {
		if order.Offers[oi].ID != offerID {
			continue
		}
		for ii := range order.Offers[oi].Items {
			if order.Offers[oi].Items[ii].ItemName == itemName {
				return &order.Offers[oi].Items[ii]
			}
		}
	}
	return nil
}

// applyAdminFields переносит назначения оператора в позицию предложения.
func applyAdminFields(item *domain.OfferItem, admin domain.AdminOfferFields) {
	if admin.Price != nil {
		price := *admin.Price
		item.AdminPrice = &price
	} else {
		item.AdminPrice = nil
	}
	item.AdminCurrency = admin.Currency
	item.AdminComment = admin.Comment
}

// applyContentEdits пишет правки содержимого в заказ. Поля пишутся как есть:
// пустое значение снимает правку.
func applyContentEdits(order *domain.Order, car domain.CarEdit, items []domain.ItemEdit) {
	order.EditedBrand = car.Brand
	order.EditedModel = car.Model
	order.EditedYear = car.Year
	order.EditedBody = car.Body

	for _, edit := range items {
		for i := range order.Items {
			if order.Items[i].Name != edit.Name {
				continue
			}
			order.Items[i].EditedName = edit.EditedName
			if edit.EditedQty > 0 {
				order.Items[i].EditedQty = edit.EditedQty
			} else {
				order.Items[i].EditedQty = 0
			}
		}
	}
}
