package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager(t *testing.T) {
	t.Run("Happy path - services stop on shutdown", func(t *testing.T) {
		m := NewManager()
		h, err := m.NewServiceHandle("ticker")
		require.NoError(t, err)

		go func() {
			defer h.Close()
			for h.Sleep(time.Hour) == nil {
			}
		}()

		m.Shutdown()
		assert.Empty(t, m.WaitWithTimeout(time.Second))
		assert.ErrorIs(t, h.Err(), context.Canceled)
	})

	t.Run("Unhappy path - duplicate name", func(t *testing.T) {
		m := NewManager()
		_, err := m.NewServiceHandle("a")
		require.NoError(t, err)
		_, err = m.NewServiceHandle("a")
		assert.Error(t, err)
	})

	t.Run("Unhappy path - stuck service is reported", func(t *testing.T) {
		m := NewManager()
		_, err := m.NewServiceHandle("stuck")
		require.NoError(t, err)
		h, err := m.NewServiceHandle("fine")
		require.NoError(t, err)
		h.Close()
		h.Close()

		m.Shutdown()
		assert.Equal(t, []string{"stuck"}, m.WaitWithTimeout(20*time.Millisecond))
	})
}
