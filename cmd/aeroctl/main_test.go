package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"aerodb/db"
	"aerodb/seed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aero.sqlite3")
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	data := &seed.Dataset{
		Passengers: []string{"Batman", "Robin"},
		Companies:  []string{"S7", "Pobeda"},
		Planes:     []seed.PlaneSeed{{Name: "AirBus A310", Seats: 4, Company: "S7"}},
		Trips: []seed.TripSeed{
			{Company: "S7", Plane: "AirBus A310", TimeOut: day.Add(8 * time.Hour), TimeIn: day.Add(18 * time.Hour), TownOut: "Moscow", TownIn: "New-york"},
		},
		Taken: []seed.TakenSeed{{TripID: 1, Place: 2, Passenger: "Batman"}},
	}
	_, err := db.BootstrapSQLite(context.Background(), path, data, db.BootstrapOptions{Strict: true})
	require.NoError(t, err)
	return path
}

func runCmd(t *testing.T, path string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(append([]string{"--db", path, "--log-level", "error"}, args...), &out)
	return out.String(), err
}

func TestStats(t *testing.T) {
	path := newTestDB(t)

	out, err := runCmd(t, path, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Passenger  2")
	assert.Contains(t, out, "Company    2")
	assert.Contains(t, out, "Taken      1")
}

func TestSeatCommands(t *testing.T) {
	path := newTestDB(t)

	out, err := runCmd(t, path, "free-seats", "1")
	require.NoError(t, err)
	assert.Equal(t, "1, 3, 4\n", out)

	_, err = runCmd(t, path, "take-seat", "1", "Robin", "3")
	require.NoError(t, err)

	out, err = runCmd(t, path, "free-seats", "1")
	require.NoError(t, err)
	assert.Equal(t, "1, 4\n", out)

	_, err = runCmd(t, path, "take-seat", "1", "Robin", "2")
	assert.ErrorIs(t, err, db.ErrAlreadyTaken)

	_, err = runCmd(t, path, "take-seat", "1", "Robin", "5")
	assert.ErrorIs(t, err, db.ErrSeatRange)

	_, err = runCmd(t, path, "free-seats", "abc")
	assert.Error(t, err)
}

func TestPlanAndEndTrip(t *testing.T) {
	path := newTestDB(t)

	out, err := runCmd(t, path, "plan-trip",
		"--company", "S7", "--plane", "AirBus A310",
		"--from", "Moscow", "--to", "Tokyo",
		"--out", "2024-03-02T08:00:00Z", "--in", "2024-03-02T17:00:00Z",
	)
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	out, err = runCmd(t, path, "trips", "Moscow", "Tokyo")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "2024-03-02T08:00:00Z")

	_, err = runCmd(t, path, "plan-trip",
		"--company", "Ghost Air", "--plane", "AirBus A310",
		"--from", "Moscow", "--to", "Tokyo",
		"--out", "2024-03-02T08:00:00Z", "--in", "2024-03-02T17:00:00Z",
	)
	assert.ErrorIs(t, err, db.ErrNotFound)

	_, err = runCmd(t, path, "plan-trip",
		"--company", "S7", "--plane", "AirBus A310",
		"--from", "Moscow", "--to", "Tokyo",
		"--out", "2024-03-02T17:00:00Z", "--in", "2024-03-02T08:00:00Z",
	)
	assert.ErrorIs(t, err, db.ErrIncorrectTime)

	_, err = runCmd(t, path, "end-trip", "1")
	require.NoError(t, err)

	out, err = runCmd(t, path, "trips")
	require.NoError(t, err)
	assert.NotContains(t, out, "New-york")
	assert.Contains(t, out, "Tokyo")
}

func TestCompanyCommands(t *testing.T) {
	path := newTestDB(t)

	_, err := runCmd(t, path, "add-company", "S7")
	assert.ErrorIs(t, err, db.ErrAlreadyIn)

	_, err = runCmd(t, path, "add-plane", "Superjet", "Pobeda", "3")
	require.NoError(t, err)

	_, err = runCmd(t, path, "del-company", "S7", "Pobeda")
	require.NoError(t, err)

	out, err := runCmd(t, path, "trips")
	require.NoError(t, err)
	assert.Contains(t, out, "company:2")

	_, err = runCmd(t, path, "del-plane", "AirBus A310")
	require.NoError(t, err)

	out, err = runCmd(t, path, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Trip       0")
	assert.Contains(t, out, "Plane      1")
	assert.Contains(t, out, "Taken      0")
}

func TestMissingDatabase(t *testing.T) {
	_, err := runCmd(t, filepath.Join(t.TempDir(), "nope.sqlite3"), "stats")
	assert.ErrorIs(t, err, db.ErrFile)
}
