package availability

import (
	"github.com/filter-tracker/backend/internal/storage/models"
)

// PoolFor maps a filter to its accessory pool. The partition is fixed:
// filter 4 draws from pool B exclusively, filters 1-3 share pool A.
// Total over the filter-id domain; unknown ids fall through to pool A.
func PoolFor(filterID int) models.PoolTag {
	if filterID == 4 {
		return models.PoolB
	}
	return models.PoolA
}

// VisibleTo returns the accessories offered to the given filter: those
// whose pool tag matches the filter's pool under PoolFor.
func VisibleTo(filterID int, accessories []models.Accessory) []models.Accessory {
	pool := PoolFor(filterID)
	visible := make([]models.Accessory, 0, len(accessories))
	for _, a := range accessories {
		if a.Pool == pool {
			visible = append(visible, a)
		}
	}
	return visible
}
