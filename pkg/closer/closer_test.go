package closer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloser_ClosesInReverseOrder(t *testing.T) {
	c := NewCloser(0)

	var order []string
	for _, name := range []string{"postgres", "redis", "http"} {
		c.Add(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, []string{"http", "redis", "postgres"}, order)
}

func TestCloser_CollectsErrors(t *testing.T) {
	c := NewCloser(0)
	c.Add("kafka", func(context.Context) error { return errors.New("writer closed twice") })
	c.Add("redis", func(context.Context) error { return nil })

	err := c.Close(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kafka: writer closed twice")

	// повторный вызов ничего не делает
	assert.NoError(t, c.Close(context.Background()))
}

func TestCloser_ForcedCloseOnTimeout(t *testing.T) {
	c := NewCloser(50 * time.Millisecond)

	forced := make(chan struct{}, 1)
	c.Add("slow-after", func(ctx context.Context) error {
		forced <- struct{}{}
		return nil
	})
	c.Add("stuck", func(context.Context) error {
		time.Sleep(200 * time.Millisecond)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Close(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shutdown interrupted")

	select {
	case <-forced:
	case <-time.After(time.Second):
		t.Fatal("remaining resource was not force-closed")
	}
}
