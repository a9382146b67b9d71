package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBaseFeeChargesMinimumForShortRides(t *testing.T) {
	p := Pricing{RatePerHour: 5000, MinimumFee: 5000}

	assert.Equal(t, int64(5000), p.BaseFee(0))
	assert.Equal(t, int64(5000), p.BaseFee(10*time.Minute))
	assert.Equal(t, int64(5000), p.BaseFee(-time.Hour), "clock skew still charges the minimum")
}

func TestBaseFeeScalesWithElapsedHours(t *testing.T) {
	p := Pricing{RatePerHour: 5000, MinimumFee: 5000}

	assert.Equal(t, int64(10000), p.BaseFee(2*time.Hour))
	assert.Equal(t, int64(7500), p.BaseFee(90*time.Minute))
	assert.Equal(t, int64(120000), p.BaseFee(24*time.Hour))
}

func TestTotalAddsServiceCostToBaseFee(t *testing.T) {
	p := Pricing{RatePerHour: 5000, MinimumFee: 5000}

	// Two hours plus a 10000 and a 15000 add-on.
	assert.Equal(t, int64(35000), p.Total(2*time.Hour, 25000))

	// Services never replace the time-based fee.
	assert.Equal(t, int64(5000), p.Total(5*time.Minute, 0))
	assert.Equal(t, int64(30000), p.Total(5*time.Minute, 25000))
}

func TestTotalIsMonotonicInDuration(t *testing.T) {
	p := Pricing{RatePerHour: 5000, MinimumFee: 5000}

	prev := int64(0)
	for h := 1; h <= 10; h++ {
		cur := p.Total(time.Duration(h)*time.Hour, 0)
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}
