package memory

import (
	"strings"

	"github.com/saleledger/backend/internal/domain/shared"
	"github.com/saleledger/backend/internal/infrastructure/persistence/models"
)

func matchesSearch(name, search string) bool {
	if search == "" {
		return true
	}
	return strings.Contains(models.FoldName(name), models.FoldName(search))
}

func paginate[T any](items []T, filter shared.Filter) []T {
	if filter.PageSize <= 0 {
		return items
	}
	start := filter.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + filter.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func descending(filter shared.Filter, defaultDesc bool) bool {
	switch strings.ToLower(strings.TrimSpace(filter.OrderDir)) {
	case "asc":
		return false
	case "desc":
		return true
	}
	return defaultDesc
}

// detach copies the aggregate root without pending events
func detach(a shared.BaseAggregateRoot) shared.BaseAggregateRoot {
	a.ClearDomainEvents()
	return a
}
