package automod

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tppcore/modbot/models"
)

func TestTimeoutDuration(t *testing.T) {
	assert := assert.New(t)

	cases := []struct {
		recent   int64
		expected time.Duration
	}{
		{0, 2 * time.Minute},
		{1, 2 * time.Minute},
		{2, 2 * time.Minute},
		{3, 4 * time.Minute},
		{5, 8 * time.Minute},
		{10082, MaxTimeoutDuration},
		{math.MaxInt64, MaxTimeoutDuration},
	}
	for _, c := range cases {
		assert.Equal(c.expected, TimeoutDuration(c.recent, 2), "recent=%d", c.recent)
	}
	assert.Equal(4*time.Minute, TimeoutDuration(1, 0))
	assert.Equal(14*24*time.Hour-time.Second, MaxTimeoutDuration)
}

func TestCalculateTimeoutDurationWindow(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng, _, modlog := EngineTestFixture()
	user := models.User{ID: "1"}

	old := eng.Now().Add(-8 * 24 * time.Hour)
	for i := 0; i < 5; i++ {
		_, err := modlog.LogModAction(ctx, user, "old", "test", old)
		assert.NoError(err)
	}
	d, err := eng.CalculateTimeoutDuration(ctx, user)
	assert.NoError(err)
	assert.Equal(2*time.Minute, d)

	for i := 0; i < 3; i++ {
		_, err := modlog.LogModAction(ctx, user, "recent", "test", eng.Now().Add(-time.Hour))
		assert.NoError(err)
	}
	d, err = eng.CalculateTimeoutDuration(ctx, user)
	assert.NoError(err)
	assert.Equal(4*time.Minute, d)
}
