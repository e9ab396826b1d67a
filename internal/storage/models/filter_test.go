package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapabilityLabel(t *testing.T) {
	cases := []struct {
		name      string
		uv        bool
		tenMicron bool
		want      string
	}{
		{"both", true, true, CapabilityTenMicronUV},
		{"ten micron only", false, true, CapabilityTenMicron},
		{"neither", false, false, CapabilityBase},
		{"uv without ten micron", true, false, CapabilityBase},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := Filter{UVCapability: tc.uv, TenMicronCapability: tc.tenMicron}
			assert.Equal(t, tc.want, f.CapabilityLabel())
		})
	}
}

func TestServiceStatusAt(t *testing.T) {
	last := "2026-01-01"
	f := Filter{LastServiceDate: &last, ServiceFrequencyDays: 90}

	status := f.ServiceStatusAt("2026-02-01")
	require.NotNil(t, status.NextServiceDate)
	assert.Equal(t, "2026-04-01", *status.NextServiceDate)
	assert.False(t, status.Due)

	assert.True(t, f.ServiceStatusAt("2026-04-01").Due)
	assert.True(t, f.ServiceStatusAt("2026-06-15").Due)
}

func TestServiceStatusAtNoHistory(t *testing.T) {
	f := Filter{ServiceFrequencyDays: 90}
	status := f.ServiceStatusAt("2026-02-01")
	assert.Nil(t, status.NextServiceDate)
	assert.False(t, status.Due)

	last := "2026-01-01"
	f = Filter{LastServiceDate: &last}
	assert.False(t, f.ServiceStatusAt("2026-06-01").Due)
}

func TestWindowContains(t *testing.T) {
	w := OutOfServiceWindow{StartDate: "2026-03-01", EndDate: "2026-03-05"}

	assert.False(t, w.Contains("2026-02-28"))
	assert.True(t, w.Contains("2026-03-01"))
	assert.True(t, w.Contains("2026-03-03"))
	assert.True(t, w.Contains("2026-03-05"))
	assert.False(t, w.Contains("2026-03-06"))
}

func TestPoolTagValid(t *testing.T) {
	assert.True(t, PoolA.Valid())
	assert.True(t, PoolB.Valid())
	assert.False(t, PoolTag("pool-c").Valid())
	assert.False(t, PoolTag("").Valid())
}
