package view_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/partsdesk/internal/domain"
	"github.com/vladislavdragonenkov/partsdesk/internal/view"
)

// fixtureOrders покрывает обе вкладки, разные даты, годы и число предложений.
func fixtureOrders() []domain.Order {
	return []domain.Order{
		{
			ID: "3", VIN: "VIN-C", ClientName: "Борисов", CreatedAt: "05.01.2026",
			Year: "2015",
			Items: []domain.OrderItem{
				{Name: "Радиатор", Qty: 1},
			},
			Offers: []domain.Offer{{ID: "o1"}, {ID: "o2"}},
			Status: domain.StatusOpen,
		},
		{
			ID: "1", VIN: "VIN-A", ClientName: "Антонов", CreatedAt: "20.12.2025",
			Year: "2020", EditedYear: "2011",
			Items: []domain.OrderItem{
				{Name: "Бампер", Qty: 1},
			},
			Status: domain.StatusOpen,
		},
		{
			ID: "10", VIN: "VIN-B", ClientName: "Власов", CreatedAt: "07,03,2026",
			Year: "2018",
			Items: []domain.OrderItem{
				{Name: "Фара", Qty: 2},
			},
			Offers: []domain.Offer{{ID: "o3"}},
			Status: domain.StatusOpen,
		},
		{
			ID: "4", VIN: "VIN-D", ClientName: "Громов", CreatedAt: "01.01.2026",
			ReadyToBuy: true, Status: domain.StatusOpen,
		},
		{
			ID: "5", VIN: "VIN-E", ClientName: "Дёмин", CreatedAt: "02.01.2026",
			IsProcessed: true, Status: domain.StatusClosed,
		},
		{
			ID: "6", VIN: "VIN-F", ClientName: "Ежов", CreatedAt: "03.01.2026",
			IsRefused: true, Status: domain.StatusClosed,
		},
	}
}

func ids(p view.Page) []string {
	result := make([]string, len(p.Orders))
	for i, o := range p.Orders {
		result[i] = o.ID
	}
	return result
}

func TestApply_TabPartition(t *testing.T) {
	orders := fixtureOrders()

	open := view.Apply(orders, view.Query{Tab: view.TabOpen})
	closed := view.Apply(orders, view.Query{Tab: view.TabClosed})

	// Вкладки разбивают множество без пересечений и пропусков.
	assert.Equal(t, len(orders), open.Total+closed.Total)
	assert.ElementsMatch(t, []string{"3", "1", "10"}, ids(open))
	assert.ElementsMatch(t, []string{"4", "5", "6"}, ids(closed))
}

func TestApply_SearchIndependentOfTab(t *testing.T) {
	orders := fixtureOrders()

	byVIN := view.Apply(orders, view.Query{Tab: view.TabOpen, Search: "vin-a"})
	require.Equal(t, []string{"1"}, ids(byVIN))

	byClient := view.Apply(orders, view.Query{Tab: view.TabOpen, Search: "влас"})
	require.Equal(t, []string{"10"}, ids(byClient))

	byItem := view.Apply(orders, view.Query{Tab: view.TabOpen, Search: "фара"})
	require.Equal(t, []string{"10"}, ids(byItem))

	byID := view.Apply(orders, view.Query{Tab: view.TabClosed, Search: "5"})
	require.Equal(t, []string{"5"}, ids(byID))

	// Поиск не перетягивает заказы с другой вкладки.
	missing := view.Apply(orders, view.Query{Tab: view.TabClosed, Search: "vin-a"})
	assert.Empty(t, ids(missing))
}

func TestApply_SortByNumericID(t *testing.T) {
	orders := fixtureOrders()

	page := view.Apply(orders, view.Query{Tab: view.TabOpen, SortKey: view.SortByID})
	// "10" числом больше "3", строкой — меньше.
	assert.Equal(t, []string{"1", "3", "10"}, ids(page))

	desc := view.Apply(orders, view.Query{Tab: view.TabOpen, SortKey: view.SortByID, SortDesc: true})
	assert.Equal(t, []string{"10", "3", "1"}, ids(desc))
}

func TestApply_SortByDate(t *testing.T) {
	orders := fixtureOrders()

	page := view.Apply(orders, view.Query{Tab: view.TabOpen, SortKey: view.SortByDate})
	// 20.12.2025 < 05.01.2026 < 07.03.2026 (дата с запятыми тоже парсится).
	assert.Equal(t, []string{"1", "3", "10"}, ids(page))
}

func TestApply_SortByDate_UnparsedGoLast(t *testing.T) {
	orders := []domain.Order{
		{ID: "1", CreatedAt: "мусор", Status: domain.StatusOpen},
		{ID: "2", CreatedAt: "01.01.2026", Status: domain.StatusOpen},
	}

	page := view.Apply(orders, view.Query{Tab: view.TabOpen, SortKey: view.SortByDate})
	assert.Equal(t, []string{"2", "1"}, ids(page))
}

func TestApply_SortByYearPrefersAdminEdit(t *testing.T) {
	orders := fixtureOrders()

	page := view.Apply(orders, view.Query{Tab: view.TabOpen, SortKey: view.SortByYear})
	// Заказ "1" имеет правленый год 2011, он меньше 2015 и 2018.
	assert.Equal(t, []string{"1", "3", "10"}, ids(page))
}

func TestApply_SortByClientAndOffers(t *testing.T) {
	orders := fixtureOrders()

	byClient := view.Apply(orders, view.Query{Tab: view.TabOpen, SortKey: view.SortByClient})
	assert.Equal(t, []string{"1", "3", "10"}, ids(byClient))

	byOffers := view.Apply(orders, view.Query{Tab: view.TabOpen, SortKey: view.SortByOffers})
	assert.Equal(t, []string{"1", "10", "3"}, ids(byOffers))
}

func TestApply_SortByStatusPriority(t *testing.T) {
	orders := fixtureOrders()

	page := view.Apply(orders, view.Query{Tab: view.TabClosed, SortKey: view.SortByStatus, SortDesc: true})
	// Выкуплен (4) > одобрен (3) > аннулирован (2).
	assert.Equal(t, []string{"4", "5", "6"}, ids(page))
}

func TestApply_SortIsStable(t *testing.T) {
	orders := []domain.Order{
		{ID: "1", ClientName: "Иванов", CreatedAt: "01.01.2026", Status: domain.StatusOpen},
		{ID: "2", ClientName: "Иванов", CreatedAt: "01.01.2026", Status: domain.StatusOpen},
		{ID: "3", ClientName: "Иванов", CreatedAt: "01.01.2026", Status: domain.StatusOpen},
	}

	asc := view.Apply(orders, view.Query{Tab: view.TabOpen, SortKey: view.SortByClient})
	assert.Equal(t, []string{"1", "2", "3"}, ids(asc), "equal keys preserve source order")

	desc := view.Apply(orders, view.Query{Tab: view.TabOpen, SortKey: view.SortByClient, SortDesc: true})
	assert.Equal(t, []string{"1", "2", "3"}, ids(desc), "flipping direction keeps ties in source order")
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	orders := fixtureOrders()
	originalFirst := orders[0].ID

	_ = view.Apply(orders, view.Query{Tab: view.TabOpen, SortKey: view.SortByID, SortDesc: true})
	assert.Equal(t, originalFirst, orders[0].ID, "Apply must not reorder the caller's slice")
}

func TestApply_Pagination(t *testing.T) {
	orders := fixtureOrders()

	first := view.Apply(orders, view.Query{Tab: view.TabOpen, SortKey: view.SortByID, PageSize: 2, Page: 1})
	require.Equal(t, []string{"1", "3"}, ids(first))
	assert.Equal(t, 3, first.Total)
	assert.Equal(t, 2, first.PageCount)

	second := view.Apply(orders, view.Query{Tab: view.TabOpen, SortKey: view.SortByID, PageSize: 2, Page: 2})
	assert.Equal(t, []string{"10"}, ids(second))

	beyond := view.Apply(orders, view.Query{Tab: view.TabOpen, PageSize: 2, Page: 9})
	assert.Empty(t, beyond.Orders)
	assert.Equal(t, 3, beyond.Total)

	unpaged := view.Apply(orders, view.Query{Tab: view.TabOpen})
	assert.Len(t, unpaged.Orders, 3)
	assert.Equal(t, 1, unpaged.PageCount)
}
