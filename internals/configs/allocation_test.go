package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAllocationSettings(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		got, err := LoadAllocationSettings(map[string]string{"PATH": "/usr/bin"})

		require.NoError(t, err)
		assert.Equal(t, DefaultAllocationSettings(), got)
		assert.Equal(t, "Asia/Kolkata", got.Location().String())
		_, fixed, err := got.Seed()
		require.NoError(t, err)
		assert.False(t, fixed)
	})

	t.Run("Overrides", func(t *testing.T) {
		got, err := LoadAllocationSettings(map[string]string{
			"INSTITUTION_TIMEZONE":          "Asia/Jakarta",
			"ALLOCATION_TX_RETRIES":         "5",
			"ALLOCATION_AUDIT_CRON":         "0 */2 * * *",
			"ALLOCATION_AUDIT_HORIZON_DAYS": " 7 ",
			"ALLOCATION_SHUFFLE_SEED":       "42",
			"ALLOCATION_NOTIFY":             "false",
			"ALLOCATION_RUN_TIMEOUT_SECONDS": "120",
		})

		require.NoError(t, err)
		assert.Equal(t, "Asia/Jakarta", got.Timezone)
		assert.Equal(t, 5, got.TxRetries)
		assert.Equal(t, "0 */2 * * *", got.AuditCron)
		assert.Equal(t, 7, got.AuditHorizonDays)
		assert.False(t, got.NotifyOnCreate)
		assert.Equal(t, 2*time.Minute, got.RunTimeout())
		seed, fixed, err := got.Seed()
		require.NoError(t, err)
		assert.True(t, fixed)
		assert.Equal(t, uint64(42), seed)
	})

	t.Run("Rejects bad values", func(t *testing.T) {
		for _, env := range []map[string]string{
			{"INSTITUTION_TIMEZONE": "Mars/Olympus"},
			{"ALLOCATION_TX_RETRIES": "-1"},
			{"ALLOCATION_TX_RETRIES": "many"},
			{"ALLOCATION_AUDIT_HORIZON_DAYS": "0"},
			{"ALLOCATION_SHUFFLE_SEED": "abc"},
			{"ALLOCATION_RUN_TIMEOUT_SECONDS": "0"},
		} {
			_, err := LoadAllocationSettings(env)
			assert.Error(t, err, env)
		}
	})
}
