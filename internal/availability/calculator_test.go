package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filter-tracker/backend/internal/storage/models"
)

func testAccessory(id, total int, pool models.PoolTag) models.Accessory {
	return models.Accessory{
		ID:            id,
		Name:          "Hose Reel",
		Pool:          pool,
		TotalQuantity: total,
		Unit:          "reels",
	}
}

func allocation(accessoryID, qty int) models.AccessoryAllocation {
	return models.AccessoryAllocation{
		AccessoryID:   accessoryID,
		AccessoryName: "Hose Reel",
		Quantity:      qty,
	}
}

func TestPoolFor(t *testing.T) {
	assert.Equal(t, models.PoolA, PoolFor(1))
	assert.Equal(t, models.PoolA, PoolFor(2))
	assert.Equal(t, models.PoolA, PoolFor(3))
	assert.Equal(t, models.PoolB, PoolFor(4))
}

func TestVisibleTo(t *testing.T) {
	accessories := []models.Accessory{
		testAccessory(1, 5, models.PoolA),
		testAccessory(2, 5, models.PoolB),
		testAccessory(3, 5, models.PoolA),
	}

	visibleA := VisibleTo(1, accessories)
	require.Len(t, visibleA, 2)
	assert.Equal(t, 1, visibleA[0].ID)
	assert.Equal(t, 3, visibleA[1].ID)

	visibleB := VisibleTo(4, accessories)
	require.Len(t, visibleB, 1)
	assert.Equal(t, 2, visibleB[0].ID)
}

func TestRemovedQuantityStacksOverlappingWindows(t *testing.T) {
	acc := testAccessory(1, 10, models.PoolA)
	acc.Windows = []models.OutOfServiceWindow{
		{StartDate: "2026-03-01", EndDate: "2026-03-05", Quantity: 2},
		{StartDate: "2026-03-04", EndDate: "2026-03-10", Quantity: 3},
	}

	assert.Equal(t, 2, RemovedQuantity(&acc, "2026-03-02"))
	assert.Equal(t, 5, RemovedQuantity(&acc, "2026-03-04")) // overlap stacks
	assert.Equal(t, 5, RemovedQuantity(&acc, "2026-03-05"))
	assert.Equal(t, 3, RemovedQuantity(&acc, "2026-03-06"))
	assert.Equal(t, 0, RemovedQuantity(&acc, "2026-03-11"))
}

func TestRemovedQuantityInclusiveBounds(t *testing.T) {
	acc := testAccessory(1, 10, models.PoolA)
	acc.Windows = []models.OutOfServiceWindow{
		{StartDate: "2026-03-03", EndDate: "2026-03-07", Quantity: 1},
	}

	assert.Equal(t, 0, RemovedQuantity(&acc, "2026-03-02"))
	assert.Equal(t, 1, RemovedQuantity(&acc, "2026-03-03"))
	assert.Equal(t, 1, RemovedQuantity(&acc, "2026-03-07"))
	assert.Equal(t, 0, RemovedQuantity(&acc, "2026-03-08"))
}

func TestAllocatedQuantitySumsAcrossFilters(t *testing.T) {
	bookings := []models.Booking{
		{FilterID: 1, Date: "2026-03-01", Allocations: []models.AccessoryAllocation{allocation(7, 2)}},
		{FilterID: 2, Date: "2026-03-01", Allocations: []models.AccessoryAllocation{allocation(7, 3)}},
		{FilterID: 3, Date: "2026-03-02", Allocations: []models.AccessoryAllocation{allocation(7, 4)}},
		{FilterID: 1, Date: "2026-03-01", Allocations: []models.AccessoryAllocation{allocation(9, 1)}},
	}

	assert.Equal(t, 5, AllocatedQuantity(7, "2026-03-01", bookings))
	assert.Equal(t, 4, AllocatedQuantity(7, "2026-03-02", bookings))
	assert.Equal(t, 0, AllocatedQuantity(7, "2026-03-03", bookings))
	assert.Equal(t, 1, AllocatedQuantity(9, "2026-03-01", bookings))
}

func TestComputeIdleAccessory(t *testing.T) {
	acc := testAccessory(1, 6, models.PoolA)

	res, err := Compute(2, &acc, nil, "2026-03-01", "2026-03-07")
	require.NoError(t, err)
	assert.Equal(t, 6, res.AvailableQuantity)
	assert.Equal(t, 0, res.AllocatedCount)
	assert.False(t, res.OutOfService)
}

func TestComputeMinimumAcrossDays(t *testing.T) {
	// The binding day constrains the whole range: 3 units allocated on
	// March 3rd only, so a March 1-5 request can take at most 2.
	acc := testAccessory(1, 5, models.PoolA)
	bookings := []models.Booking{
		{FilterID: 3, Date: "2026-03-03", Allocations: []models.AccessoryAllocation{allocation(1, 3)}},
	}

	res, err := Compute(1, &acc, bookings, "2026-03-01", "2026-03-05")
	require.NoError(t, err)
	assert.Equal(t, 2, res.AvailableQuantity)
	assert.Equal(t, 3, res.AllocatedCount)
}

func TestComputeClampsAtZero(t *testing.T) {
	acc := testAccessory(1, 2, models.PoolA)
	acc.Windows = []models.OutOfServiceWindow{
		{StartDate: "2026-03-01", EndDate: "2026-03-31", Quantity: 2},
	}
	bookings := []models.Booking{
		{FilterID: 2, Date: "2026-03-10", Allocations: []models.AccessoryAllocation{allocation(1, 1)}},
	}

	res, err := Compute(1, &acc, bookings, "2026-03-09", "2026-03-11")
	require.NoError(t, err)
	assert.Equal(t, 0, res.AvailableQuantity)
	assert.True(t, res.OutOfService)
}

func TestComputePartialOutOfServiceWarns(t *testing.T) {
	// Only one of three days is affected and capacity stays positive, but
	// the out-of-service flag still surfaces the degradation.
	acc := testAccessory(1, 4, models.PoolA)
	acc.Windows = []models.OutOfServiceWindow{
		{StartDate: "2026-03-02", EndDate: "2026-03-02", Quantity: 1},
	}

	res, err := Compute(1, &acc, nil, "2026-03-01", "2026-03-03")
	require.NoError(t, err)
	assert.Equal(t, 3, res.AvailableQuantity)
	assert.True(t, res.OutOfService)
}

func TestComputeOtherPoolIsUnavailable(t *testing.T) {
	acc := testAccessory(1, 8, models.PoolB)

	res, err := Compute(1, &acc, nil, "2026-03-01", "2026-03-02")
	require.NoError(t, err)
	assert.Equal(t, 0, res.AvailableQuantity)
	assert.False(t, res.OutOfService)
}

func TestComputePoolBUnaffectedByPoolABookings(t *testing.T) {
	// Filter 4 draws from pool B; heavy pool A traffic on the same
	// accessory id must not bleed across because the accessory itself is
	// pool-scoped and visibility is enforced per filter.
	accB := testAccessory(5, 3, models.PoolB)
	bookings := []models.Booking{
		{FilterID: 1, Date: "2026-03-01", Allocations: []models.AccessoryAllocation{allocation(9, 3)}},
		{FilterID: 2, Date: "2026-03-01", Allocations: []models.AccessoryAllocation{allocation(9, 2)}},
	}

	res, err := Compute(4, &accB, bookings, "2026-03-01", "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, 3, res.AvailableQuantity)
}

func TestComputeOversubscribedAcrossFilters(t *testing.T) {
	// Two filters in the pool each hold 1 unit of a total of 1 on the
	// same day. Raw capacity is -1; the result clamps to 0 and reflects
	// both allocations, not just the querying filter's own.
	acc := testAccessory(1, 1, models.PoolA)
	bookings := []models.Booking{
		{FilterID: 1, Date: "2026-03-01", Allocations: []models.AccessoryAllocation{allocation(1, 1)}},
		{FilterID: 2, Date: "2026-03-01", Allocations: []models.AccessoryAllocation{allocation(1, 1)}},
	}

	res, err := Compute(3, &acc, bookings, "2026-03-01", "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, 0, res.AvailableQuantity)
	assert.Equal(t, 2, res.AllocatedCount)
}

func TestComputeZeroTotalQuantity(t *testing.T) {
	acc := testAccessory(1, 0, models.PoolA)

	res, err := Compute(1, &acc, nil, "2026-03-01", "2026-03-05")
	require.NoError(t, err)
	assert.Equal(t, 0, res.AvailableQuantity)
}

func TestComputeEmptyRange(t *testing.T) {
	acc := testAccessory(1, 5, models.PoolA)

	res, err := Compute(1, &acc, nil, "2026-03-05", "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, 0, res.AvailableQuantity)
}

func TestComputeMalformedDates(t *testing.T) {
	acc := testAccessory(1, 5, models.PoolA)

	_, err := Compute(1, &acc, nil, "garbage", "2026-03-01")
	assert.Error(t, err)
}

func TestComputeCriticalShortfall(t *testing.T) {
	acc := testAccessory(1, 2, models.PoolA)
	acc.Critical = true
	acc.RequiredPerBooking = 2
	bookings := []models.Booking{
		{FilterID: 2, Date: "2026-03-01", Allocations: []models.AccessoryAllocation{allocation(1, 1)}},
	}

	res, err := Compute(1, &acc, bookings, "2026-03-01", "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, 1, res.AvailableQuantity)
	assert.True(t, res.CriticalShortfall)

	// Shortfall clears once enough units are free
	res, err = Compute(1, &acc, nil, "2026-03-01", "2026-03-01")
	require.NoError(t, err)
	assert.False(t, res.CriticalShortfall)
}

func TestComputeAllPreservesOrderAndFiltersPool(t *testing.T) {
	accessories := []models.Accessory{
		testAccessory(3, 4, models.PoolA),
		testAccessory(1, 2, models.PoolB),
		testAccessory(2, 6, models.PoolA),
	}

	results, err := ComputeAll(2, accessories, nil, "2026-03-01", "2026-03-01")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 3, results[0].AccessoryID)
	assert.Equal(t, 4, results[0].AvailableQuantity)
	assert.Equal(t, 2, results[1].AccessoryID)
	assert.Equal(t, 6, results[1].AvailableQuantity)
}
