package domain

import "strings"

// OrderStatus описывает грубый статус заказа, который отдаёт сервис заказов.
type OrderStatus string

const (
	// StatusOpen — заказ в работе, виден на вкладке открытых.
	StatusOpen OrderStatus = "OPEN"
	// StatusClosed — заказ закрыт на стороне сервиса.
	StatusClosed OrderStatus = "CLOSED"
)

// OfferRank описывает выбор оператора по позиции предложения.
type OfferRank string

const (
	// RankLeader — позиция выбрана победителем по строке заказа.
	RankLeader OfferRank = "LEADER"
	// RankReserve — позиция не выбрана. Пустое значение эквивалентно RankReserve.
	RankReserve OfferRank = "RESERVE"
)

// IsLeader возвращает true только для явного LEADER.
func (r OfferRank) IsLeader() bool {
	return r == RankLeader
}

// OrderItem представляет одну запрошенную позицию заказа.
type OrderItem struct {
	// Name — каноническое имя позиции; по нему матчатся позиции предложений.
	Name string
	// EditedName — имя, заданное администратором; при непустом значении перекрывает Name.
	EditedName string
	// Qty — заявленное количество.
	Qty int32
	// EditedQty — количество, заданное администратором; перекрывает Qty, если > 0.
	EditedQty int32
}

// Label возвращает отображаемое имя позиции с учётом правки администратора.
func (i OrderItem) Label() string {
	if i.EditedName != "" {
		return i.EditedName
	}
	return i.Name
}

// EffectiveQty возвращает количество с учётом правки администратора.
func (i OrderItem) EffectiveQty() int32 {
	if i.EditedQty > 0 {
		return i.EditedQty
	}
	return i.Qty
}

// OfferItem — ответ поставщика по одной позиции заказа.
type OfferItem struct {
	// ItemName матчится с OrderItem.Name точным сравнением (не с правленым именем).
	ItemName string
	Qty      int32
	// PriceMinor — цена поставщика за единицу в минимальных денежных единицах.
	PriceMinor int64
	Currency   string
	// AdminPrice — цена, назначенная оператором; nil — не задана.
	AdminPrice    *int64
	AdminCurrency string
	AdminComment  string
	PhotoURL      string
	// WeightKg и LeadTimeDays — справочные данные поставщика, на логику не влияют.
	WeightKg     float64
	LeadTimeDays int32
	Rank         OfferRank
}

// Offer — предложение одного поставщика по заказу.
type Offer struct {
	ID         string
	ClientName string
	Items      []OfferItem
}

// AdminOfferFields несёт назначения оператора при выборе лидера.
type AdminOfferFields struct {
	Price    *int64
	Currency string
	Comment  string
}

// Order агрегирует заказ, его позиции, предложения поставщиков и флаги состояния.
type Order struct {
	// ID — строковый идентификатор, сортируемый как число.
	ID          string
	VIN         string
	ClientName  string
	ClientPhone string
	// CreatedAt — локализованная дата создания в виде строки "день.месяц.год";
	// разделителем может быть точка или запятая, формат принадлежит сервису заказов.
	CreatedAt string

	Brand string
	Model string
	Year  string
	Body  string
	// Edited* — правки администратора; непустое значение перекрывает исходное поле.
	EditedBrand string
	EditedModel string
	EditedYear  string
	EditedBody  string

	Items  []OrderItem
	Offers []Offer

	// IsProcessed — заказ одобрен оператором.
	IsProcessed bool
	// IsRefused — заказ аннулирован.
	IsRefused bool
	// ReadyToBuy — закупка по заказу завершена.
	ReadyToBuy bool
	Status     OrderStatus
}

// Closed определяет принадлежность вкладке архива. Именно этот предикат,
// а не Status сам по себе, управляет разбиением на вкладки.
func (o *Order) Closed() bool {
	return o.Status == StatusClosed || o.ReadyToBuy || o.IsRefused
}

// EffectiveYear возвращает год выпуска с учётом правки администратора.
func (o *Order) EffectiveYear() string {
	if o.EditedYear != "" {
		return o.EditedYear
	}
	return o.Year
}

// EffectiveBrand возвращает марку с учётом правки администратора.
func (o *Order) EffectiveBrand() string {
	if o.EditedBrand != "" {
		return o.EditedBrand
	}
	return o.Brand
}

// EffectiveModel возвращает модель с учётом правки администратора.
func (o *Order) EffectiveModel() string {
	if o.EditedModel != "" {
		return o.EditedModel
	}
	return o.Model
}

// EffectiveBody возвращает тип кузова с учётом правки администратора.
func (o *Order) EffectiveBody() string {
	if o.EditedBody != "" {
		return o.EditedBody
	}
	return o.Body
}

// Clone возвращает глубокую копию заказа, чтобы избежать мутаций снапшота извне.
func (o Order) Clone() Order {
	clone := o
	clone.Items = append([]OrderItem(nil), o.Items...)
	clone.Offers = make([]Offer, len(o.Offers))
	for i, offer := range o.Offers {
		clone.Offers[i] = offer
		clone.Offers[i].Items = append([]OfferItem(nil), offer.Items...)
	}
	return clone
}

// CloneOrders копирует срез заказов целиком.
func CloneOrders(orders []Order) []Order {
	result := make([]Order, len(orders))
	for i := range orders {
		result[i] = orders[i].Clone()
	}
	return result
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.ID == "" {
		errs = append(errs, ErrOrderIDRequired)
	}
	if o.VIN == "" {
		errs = append(errs, ErrVINRequired)
	}
	for _, item := range o.Items {
		if strings.TrimSpace(item.Name) == "" {
			errs = append(errs, ErrItemNameRequired)
		}
		if item.Qty <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
	}

	// Проверяем единственность лидера по каждому имени позиции.
	leaders := make(map[string]int)
	for _, offer := range o.Offers {
		for _, oi := range offer.Items {
			if oi.Rank.IsLeader() {
				leaders[oi.ItemName]++
			}
		}
	}
	for _, count := range leaders {
		if count > 1 {
			errs = append(errs, ErrDuplicateLeader)
			break
		}
	}

	return errs
}
