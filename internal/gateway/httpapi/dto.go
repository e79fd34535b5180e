package httpapi

import "github.com/vladislavdragonenkov/partsdesk/internal/domain"

// DTO повторяют wire-формат сервиса заказов; имена полей принадлежат ему.

type orderItemDTO struct {
	Name       string `json:"name"`
	EditedName string `json:"editedName,omitempty"`
	Qty        int32  `json:"qty"`
	EditedQty  int32  `json:"editedQty,omitempty"`
}

type offerItemDTO struct {
	ItemName      string  `json:"itemName"`
	Qty           int32   `json:"qty"`
	PriceMinor    int64   `json:"priceMinor"`
	Currency      string  `json:"currency"`
	AdminPrice    *int64  `json:"adminPrice,omitempty"`
	AdminCurrency string  `json:"adminCurrency,omitempty"`
	AdminComment  string  `json:"adminComment,omitempty"`
	PhotoURL      string  `json:"photoUrl,omitempty"`
	WeightKg      float64 `json:"weightKg,omitempty"`
	LeadTimeDays  int32   `json:"leadTimeDays,omitempty"`
	Rank          string  `json:"rank,omitempty"`
}

type offerDTO struct {
	ID         string         `json:"id"`
	ClientName string         `json:"clientName"`
	Items      []offerItemDTO `json:"items"`
}

type carDTO struct {
	Brand       string `json:"brand"`
	Model       string `json:"model"`
	Year        string `json:"year"`
	Body        string `json:"bodyType"`
	EditedBrand string `json:"editedBrand,omitempty"`
	EditedModel string `json:"editedModel,omitempty"`
	EditedYear  string `json:"editedYear,omitempty"`
	EditedBody  string `json:"editedBodyType,omitempty"`
}

type orderDTO struct {
	ID           string         `json:"id"`
	VIN          string         `json:"vin"`
	ClientName   string         `json:"clientName"`
	ClientPhone  string         `json:"clientPhone"`
	Date         string         `json:"date"`
	Car          carDTO         `json:"car"`
	OrderedItems []orderItemDTO `json:"orderedItems"`
	Offers       []offerDTO     `json:"offers"`
	IsProcessed  bool           `json:"isProcessed"`
	IsRefused    bool           `json:"isRefused"`
	ReadyToBuy   bool           `json:"readyToBuy"`
	Status       string         `json:"status"`
}

type rankRequestDTO struct {
	VIN           string `json:"vin"`
	ItemName      string `json:"itemName"`
	OfferID       string `json:"offerId"`
	AdminPrice    *int64 `json:"adminPrice,omitempty"`
	AdminCurrency string `json:"adminCurrency,omitempty"`
	AdminComment  string `json:"adminComment,omitempty"`
	Reset         bool   `json:"reset,omitempty"`
}

type refuseRequestDTO struct {
	Reason string `json:"reason"`
	Actor  string `json:"actor"`
}

type itemEditDTO struct {
	Name       string `json:"name"`
	EditedName string `json:"editedName,omitempty"`
	EditedQty  int32  `json:"editedQty,omitempty"`
}

type contentUpdateDTO struct {
	Car   carEditDTO    `json:"car"`
	Items []itemEditDTO `json:"items"`
}

type carEditDTO struct {
	Brand string `json:"brand"`
	Model string `json:"model"`
	Year  string `json:"year"`
	Body  string `json:"bodyType"`
}

func (d orderDTO) toDomain() domain.Order {
	order := domain.Order{
		ID:          d.ID,
		VIN:         d.VIN,
		ClientName:  d.ClientName,
		ClientPhone: d.ClientPhone,
		CreatedAt:   d.Date,
		Brand:       d.Car.Brand,
		Model:       d.Car.Model,
		Year:        d.Car.Year,
		Body:        d.Car.Body,
		EditedBrand: d.Car.EditedBrand,
		EditedModel: d.Car.EditedModel,
		EditedYear:  d.Car.EditedYear,
		EditedBody:  d.Car.EditedBody,
		IsProcessed: d.IsProcessed,
		IsRefused:   d.IsRefused,
		ReadyToBuy:  d.ReadyToBuy,
		Status:      domain.OrderStatus(d.Status),
	}

	order.Items = make([]domain.OrderItem, len(d.OrderedItems))
	for i, item := range d.OrderedItems {
		order.Items[i] = domain.OrderItem{
			Name:       item.Name,
			EditedName: item.EditedName,
			Qty:        item.Qty,
			EditedQty:  item.EditedQty,
		}
	}

	order.Offers = make([]domain.Offer, len(d.Offers))
	for i, offer := range d.Offers {
		items := make([]domain.OfferItem, len(offer.Items))
		for j, oi := range offer.Items {
			items[j] = domain.OfferItem{
				ItemName:      oi.ItemName,
				Qty:           oi.Qty,
				PriceMinor:    oi.PriceMinor,
				Currency:      oi.Currency,
				AdminPrice:    oi.AdminPrice,
				AdminCurrency: oi.AdminCurrency,
				AdminComment:  oi.AdminComment,
				PhotoURL:      oi.PhotoURL,
				WeightKg:      oi.WeightKg,
				LeadTimeDays:  oi.LeadTimeDays,
				Rank:          domain.OfferRank(oi.Rank),
			}
		}
		order.Offers[i] = domain.Offer{
			ID:         offer.ID,
			ClientName: offer.ClientName,
			Items:      items,
		}
	}
	return order
}

func contentUpdateToDTO(content domain.OrderContentUpdate) contentUpdateDTO {
	dto := contentUpdateDTO{
		Car: carEditDTO{
			Brand: content.Car.Brand,
			Model: content.Car.Model,
			Year:  content.Car.Year,
			Body:  content.Car.Body,
		},
		Items: make([]itemEditDTO, len(content.Items)),
	}
	for i, edit := range content.Items {
		dto.Items[i] = itemEditDTO{
			Name:       edit.Name,
			EditedName: edit.EditedName,
			EditedQty:  edit.EditedQty,
		}
	}
	return dto
}
