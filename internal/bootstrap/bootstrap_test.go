package bootstrap

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApp_Run(t *testing.T) {
	t.Run("returns nil when run finishes cleanly", func(t *testing.T) {
		app := New()
		err := app.Run(context.Background(), func(ctx context.Context) error {
			return nil
		})
		assert.NoError(t, err)
	})

	t.Run("returns the error from run", func(t *testing.T) {
		app := New()
		want := errors.New("listen failed")
		err := app.Run(context.Background(), func(ctx context.Context) error {
			return want
		})
		assert.ErrorIs(t, err, want)
	})

	t.Run("shutdown hooks run in reverse registration order", func(t *testing.T) {
		app := New()
		var order []string
		for _, name := range []string{"database", "server", "worker"} {
			app.AddShutdownHook(func(ctx context.Context) error {
				order = append(order, name)
				return nil
			})
		}

		ctx, cancel := context.WithCancel(context.Background())
		err := app.Run(ctx, func(ctx context.Context) error {
			// Block like a server would so cancellation drives shutdown.
			cancel()
			select {}
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"worker", "server", "database"}, order)
	})

	t.Run("hook failures are joined and every hook still runs", func(t *testing.T) {
		app := New()
		firstErr := errors.New("first hook failed")
		secondErr := errors.New("second hook failed")
		lastRan := false

		app.AddShutdownHook(func(ctx context.Context) error {
			lastRan = true
			return nil
		})
		app.AddShutdownHook(func(ctx context.Context) error {
			return secondErr
		})
		app.AddShutdownHook(func(ctx context.Context) error {
			return firstErr
		})

		ctx, cancel := context.WithCancel(context.Background())
		err := app.Run(ctx, func(ctx context.Context) error {
			cancel()
			select {}
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, firstErr)
		assert.ErrorIs(t, err, secondErr)
		assert.True(t, lastRan)
	})

	t.Run("hooks registered inside run are picked up", func(t *testing.T) {
		app := New()
		hookCalled := false

		ctx, cancel := context.WithCancel(context.Background())
		err := app.Run(ctx, func(ctx context.Context) error {
			app.AddShutdownHook(func(ctx context.Context) error {
				hookCalled = true
				return nil
			})
			cancel()
			select {}
		})
		require.NoError(t, err)
		assert.True(t, hookCalled)
	})
}
