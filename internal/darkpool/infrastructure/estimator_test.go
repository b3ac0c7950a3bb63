package infrastructure

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/tradeexecution/internal/darkpool/domain"
)

func TestFillRateBandEstimator(t *testing.T) {
	ctx := context.Background()

	t.Run("estimates fall in fill-rate band", func(t *testing.T) {
		e := NewFillRateBandEstimator(rand.New(rand.NewSource(1)))

		cases := []struct {
			fillRate float64
			lo, hi   int64
		}{
			{90, 10000, 50000},
			{65, 5000, 20000},
			{30, 1000, 5000},
		}
		for _, c := range cases {
			for i := 0; i < 50; i++ {
				est, err := e.EstimateAvailable(ctx, "AAPL", &domain.DarkPoolVenue{FillRate: c.fillRate})
				require.NoError(t, err)
				assert.GreaterOrEqual(t, est, c.lo, "fillRate=%v", c.fillRate)
				assert.LessOrEqual(t, est, c.hi, "fillRate=%v", c.fillRate)
			}
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		e := NewFillRateBandEstimator(nil)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := e.EstimateAvailable(cancelled, "AAPL", &domain.DarkPoolVenue{FillRate: 90})
		assert.Error(t, err)
	})

	t.Run("safe under concurrent probes", func(t *testing.T) {
		e := NewFillRateBandEstimator(rand.New(rand.NewSource(2)))
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := e.EstimateAvailable(ctx, "AAPL", &domain.DarkPoolVenue{FillRate: 60})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()
	})
}
