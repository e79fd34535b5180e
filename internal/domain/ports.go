package domain

import "context"

// RankRequest описывает атомарное изменение ранга позиции предложения.
type RankRequest struct {
	VIN      string
	ItemName string
	OfferID  string
	// Admin — назначения оператора; пишутся и при выборе лидера, и при сбросе.
	Admin AdminOfferFields
	// Reset — директива сброса: текущий лидер понижается до резерва.
	Reset bool
}

// CarEdit несёт правки администратора по полям автомобиля.
// Значение пишется в Edited* как есть; пустая строка снимает правку.
type CarEdit struct {
	Brand string
	Model string
	Year  string
	Body  string
}

// ItemEdit несёт правки администратора по одной позиции заказа.
type ItemEdit struct {
	// Name — каноническое имя позиции, служит ключом.
	Name       string
	EditedName string
	// EditedQty <= 0 снимает правку количества.
	EditedQty int32
}

// OrderContentUpdate — полный платёж правок содержимого заказа.
type OrderContentUpdate struct {
	Car   CarEdit
	Items []ItemEdit
}

// OrderGateway описывает контракт удалённого сервиса заказов.
// Транспорт и сериализация принадлежат реализации; ядро видит только этот порт.
type OrderGateway interface {
	// FetchOrders возвращает полную коллекцию заказов.
	// forceFresh запрашивает свежие данные в обход серверного кеша.
	FetchOrders(ctx context.Context, forceFresh bool) ([]Order, error)
	// SetOfferItemRank атомарно назначает или сбрасывает лидера по позиции.
	SetOfferItemRank(ctx context.Context, req RankRequest) error
	// ApproveOrder помечает заказ одобренным.
	ApproveOrder(ctx context.Context, orderID string) error
	// RefuseOrder аннулирует заказ с причиной от имени actor.
	RefuseOrder(ctx context.Context, orderID, reason, actor string) error
	// UpdateOrderContent сохраняет правки содержимого заказа.
	UpdateOrderContent(ctx context.Context, orderID string, content OrderContentUpdate) error
	// IsBusy сообщает, есть ли у шлюза запись в полёте.
	IsBusy() bool
}
