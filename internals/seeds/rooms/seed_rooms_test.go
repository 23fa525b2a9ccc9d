package rooms

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRoomSeeds(t *testing.T) {
	rows, err := LoadRoomSeeds("data_rooms.json")

	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, 40, rows[0].RoomCapacity)
	assert.Equal(t, "Main Block 101", rows[0].RoomName)
	assert.Equal(t, "Seminar Hall", rows[3].RoomName)
	assert.Equal(t, 120, rows[3].RoomCapacity)
}

func TestLoadRoomSeedsRejectsIncompleteRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rooms.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"room_building":"X","room_benches":3}]`), 0o600))

	_, err := LoadRoomSeeds(path)

	assert.ErrorContains(t, err, "building and number")
}
