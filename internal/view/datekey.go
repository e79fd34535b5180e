package view

import (
	"strings"
	"time"
)

// ParseDateKey извлекает сортировочный ключ из локализованной даты создания
// заказа: "день.месяц.год", разделителем может быть точка или запятая, день и
// месяц — с ведущим нулём или без. Хвост после первой группы (например, время)
// отбрасывается.
func ParseDateKey(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if idx := strings.IndexAny(s, " \t"); idx >= 0 {
		s = s[:idx]
	}
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.TrimSuffix(s, ".")

	t, err := time.Parse("2.1.2006", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
