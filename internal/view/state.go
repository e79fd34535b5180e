package view

// State хранит текущие параметры представления и реализует правила их
// изменения: смена вкладки, поиска или сортировки всегда возвращает на первую
// страницу, а любое изменение сортировки сворачивает развёрнутую строку,
// чтобы избежать прыжков раскладки.
type State struct {
	q        Query
	expanded string
}

// NewState создаёт состояние представления с заданным размером страницы.
func NewState(pageSize int) *State {
	return &State{
		q: Query{
			Tab:      TabOpen,
			PageSize: pageSize,
			Page:     1,
		},
	}
}

// Query возвращает текущие параметры для конвейера.
func (s *State) Query() Query {
	return s.q
}

// ExpandedVIN возвращает VIN развёрнутой строки; пустая строка — ничего не развёрнуто.
func (s *State) ExpandedVIN() string {
	return s.expanded
}

// ToggleExpanded разворачивает строку заказа либо сворачивает её повторным вызовом.
func (s *State) ToggleExpanded(vin string) {
	if s.expanded == vin {
		s.expanded = ""
		return
	}
	s.expanded = vin
}

// SetTab переключает вкладку; смена вкладки сбрасывает страницу.
func (s *State) SetTab(tab Tab) {
	if s.q.Tab == tab {
		return
	}
	s.q.Tab = tab
	s.q.Page = 1
}

// SetSearch задаёт поисковый запрос; изменение сбрасывает страницу.
func (s *State) SetSearch(search string) {
	if s.q.Search == search {
		return
	}
	s.q.Search = search
	s.q.Page = 1
}

// SetSort активирует сортировку по ключу. Повторный выбор того же ключа
// переключает направление; новый ключ всегда начинает с возрастания.
func (s *State) SetSort(key SortKey) {
	if s.q.SortKey == key {
		s.q.SortDesc = !s.q.SortDesc
	} else {
		s.q.SortKey = key
		s.q.SortDesc = false
	}
	s.q.Page = 1
	s.expanded = ""
}

// ClearSort выключает сортировку.
func (s *State) ClearSort() {
	if s.q.SortKey == "" {
		return
	}
	s.q.SortKey = ""
	s.q.SortDesc = false
	s.q.Page = 1
	s.expanded = ""
}

// SetPage переключает текущую страницу; значения меньше единицы игнорируются.
func (s *State) SetPage(page int) {
	if page < 1 {
		return
	}
	s.q.Page = page
}

// SetPageSize меняет размер страницы и возвращает на первую страницу.
func (s *State) SetPageSize(size int) {
	if size < 1 || s.q.PageSize == size {
		return
	}
	s.q.PageSize = size
	s.q.Page = 1
}
