package approval

import (
	"strings"

	"github.com/vladislavdragonenkov/partsdesk/internal/domain"
)

// MissingCoverage возвращает позиции заказа, по которым нет ни одной
// лидерской позиции предложения. Позиции заказа ключуются эффективным
// (правленым) именем, покрытие — сырым именем из предложения: переименование
// позиции администратором снимает с неё существующее покрытие, пока оператор
// не выберет лидера заново.
func MissingCoverage(order domain.Order) []string {
	covered := make(map[string]struct{})
	for _, offer := range order.Offers {
		for _, item := range offer.Items {
			if item.Rank.IsLeader() {
				covered[normalize(item.ItemName)] = struct{}{}
			}
		}
	}

	var missing []string
	for _, item := range order.Items {
		label := item.Label()
		if _, ok := covered[normalize(label)]; !ok {
			missing = append(missing, label)
		}
	}
	return missing
}

// normalize приводит имя к ключу покрытия: без регистра и крайних пробелов.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
