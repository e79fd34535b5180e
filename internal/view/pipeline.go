package view

import (
	"sort"
	"strconv"
	"strings"

	"github.com/vladislavdragonenkov/partsdesk/internal/domain"
)

// Tab — вкладка списка заказов.
type Tab string

const (
	// TabOpen — заказы в работе.
	TabOpen Tab = "open"
	// TabClosed — архив: закрытые, выкупленные и аннулированные.
	TabClosed Tab = "closed"
)

// SortKey — активный ключ сортировки. Пустое значение — сортировка выключена.
type SortKey string

const (
	SortByID     SortKey = "id"
	SortByDate   SortKey = "date"
	SortByYear   SortKey = "year"
	SortByClient SortKey = "client"
	SortByOffers SortKey = "offers"
	SortByStatus SortKey = "status"
)

// Query — полный вход конвейера представления.
type Query struct {
	Tab      Tab
	Search   string
	SortKey  SortKey
	SortDesc bool
	// PageSize — размер страницы; Page — номер текущей страницы, с единицы.
	PageSize int
	Page     int
}

// Page — результат конвейера: видимая страница плюс сводка.
type Page struct {
	Orders []domain.Order
	// Total — число заказов после фильтров, до пагинации.
	Total int
	Page  int
	// PageCount — число страниц; минимум 1 даже для пустой выборки.
	PageCount int
}

// Apply прогоняет снапшот через четыре стадии: фильтр вкладки, поиск,
// сортировку и пагинацию. Функция чистая: вход не мутируется, порядок
// равных элементов сохраняется.
func Apply(orders []domain.Order, q Query) Page {
	filtered := filter(orders, q.Tab, q.Search)

	if q.SortKey != "" {
		sortOrders(filtered, q.SortKey, q.SortDesc)
	}

	return paginate(filtered, q.PageSize, q.Page)
}

// filter отбирает заказы вкладки и поискового запроса за один проход.
func filter(orders []domain.Order, tab Tab, search string) []domain.Order {
	needle := strings.ToLower(strings.TrimSpace(search))
	result := make([]domain.Order, 0, len(orders))

	for i := range orders {
		o := &orders[i]
		if (tab == TabClosed) != o.Closed() {
			continue
		}
		if needle != "" && !matches(o, needle) {
			continue
		}
		result = append(result, *o)
	}
	return result
}

// matches проверяет подстрочное вхождение без учёта регистра по номеру
// заказа, VIN, имени клиента и каноническим именам позиций.
func matches(o *domain.Order, needle string) bool {
	if strings.Contains(strings.ToLower(o.ID), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(o.VIN), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(o.ClientName), needle) {
		return true
	}
	for _, item := range o.Items {
		if strings.Contains(strings.ToLower(item.Name), needle) {
			return true
		}
	}
	return false
}

// statusWeight — приоритет статуса для сортировки архива:
// выкуплен > одобрен > аннулирован > прочее.
func statusWeight(o *domain.Order) int {
	switch {
	case o.ReadyToBuy:
		return 4
	case o.IsProcessed:
		return 3
	case o.IsRefused:
		return 2
	default:
		return 1
	}
}

// sortOrders сортирует срез на месте стабильным компаратором по ключу.
func sortOrders(orders []domain.Order, key SortKey, desc bool) {
	less := lessFunc(key)
	sort.SliceStable(orders, func(i, j int) bool {
		if desc {
			return less(&orders[j], &orders[i])
		}
		return less(&orders[i], &orders[j])
	})
}

func lessFunc(key SortKey) func(a, b *domain.Order) bool {
	switch key {
	case SortByID:
		return func(a, b *domain.Order) bool {
			ai, aerr := strconv.ParseInt(a.ID, 10, 64)
			bi, berr := strconv.ParseInt(b.ID, 10, 64)
			if aerr == nil && berr == nil {
				return ai < bi
			}
			return a.ID < b.ID
		}
	case SortByDate:
		return func(a, b *domain.Order) bool {
			at, aok := ParseDateKey(a.CreatedAt)
			bt, bok := ParseDateKey(b.CreatedAt)
			if aok && bok {
				return at.Before(bt)
			}
			// Нераспознанные даты уходят в конец при возрастании.
			return aok && !bok
		}
	case SortByYear:
		return func(a, b *domain.Order) bool {
			return parseYear(a.EffectiveYear()) < parseYear(b.EffectiveYear())
		}
	case SortByClient:
		return func(a, b *domain.Order) bool {
			return strings.ToLower(a.ClientName) < strings.ToLower(b.ClientName)
		}
	case SortByOffers:
		return func(a, b *domain.Order) bool {
			return len(a.Offers) < len(b.Offers)
		}
	case SortByStatus:
		return func(a, b *domain.Order) bool {
			return statusWeight(a) < statusWeight(b)
		}
	default:
		return func(a, b *domain.Order) bool { return false }
	}
}

func parseYear(s string) int {
	year, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return year
}

// paginate вырезает страницу из отфильтрованной выборки.
func paginate(orders []domain.Order, pageSize, page int) Page {
	total := len(orders)
	if pageSize <= 0 {
		return Page{Orders: orders, Total: total, Page: 1, PageCount: 1}
	}
	if page < 1 {
		page = 1
	}

	pageCount := (total + pageSize - 1) / pageSize
	if pageCount < 1 {
		pageCount = 1
	}

	start := (page - 1) * pageSize
	if start >= total {
		return Page{Orders: nil, Total: total, Page: page, PageCount: pageCount}
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return Page{Orders: orders[start:end], Total: total, Page: page, PageCount: pageCount}
}
