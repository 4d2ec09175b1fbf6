package finance

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/timesheet-insights/internal/domain/entity"
)

func approved(id, emp, proj string, hours float64) entity.TimeEntry {
	return entity.TimeEntry{ID: id, EmployeeID: emp, ProjectID: proj, Hours: hours, Approved: true}
}

func findRollup(rollups []entity.CostRollup, proj, emp string) (entity.CostRollup, bool) {
	for _, r := range rollups {
		if r.ProjectID == proj && r.EmployeeID == emp {
			return r, true
		}
	}
	return entity.CostRollup{}, false
}

func TestRollup(t *testing.T) {
	employees := []entity.Employee{
		{ID: "emp-1", HourlyRate: 500},
		{ID: "emp-2", HourlyRate: 80},
	}

	t.Run("sums hours then multiplies once", func(t *testing.T) {
		entries := []entity.TimeEntry{
			approved("te-1", "emp-1", "proj-1", 3),
			approved("te-2", "emp-1", "proj-1", 2),
			approved("te-3", "emp-1", "proj-1", 5),
		}

		rollups, err := Rollup(entries, employees)
		require.NoError(t, err)
		require.Len(t, rollups, 1)
		assert.Equal(t, 10.0, rollups[0].Hours)
		assert.Equal(t, 5000.0, rollups[0].Cost)
	})

	t.Run("fractional hours match sum-then-multiply bit for bit", func(t *testing.T) {
		h1, h2, h3 := 0.1, 0.2, 0.7
		rate := 33.3
		entries := []entity.TimeEntry{
			approved("te-1", "emp-x", "proj-1", h1),
			approved("te-2", "emp-x", "proj-1", h2),
			approved("te-3", "emp-x", "proj-1", h3),
		}

		rollups, err := Rollup(entries, []entity.Employee{{ID: "emp-x", HourlyRate: rate}})
		require.NoError(t, err)
		require.Len(t, rollups, 1)

		want := (h1 + h2 + h3) * rate
		assert.Equal(t, math.Float64bits(want), math.Float64bits(rollups[0].Cost))
	})

	t.Run("groups by project and employee", func(t *testing.T) {
		entries := []entity.TimeEntry{
			approved("te-1", "emp-1", "proj-1", 1),
			approved("te-2", "emp-2", "proj-1", 2),
			approved("te-3", "emp-1", "proj-2", 4),
		}

		rollups, err := Rollup(entries, employees)
		require.NoError(t, err)
		assert.Len(t, rollups, 3)

		r, ok := findRollup(rollups, "proj-1", "emp-2")
		require.True(t, ok)
		assert.Equal(t, 160.0, r.Cost)

		r, ok = findRollup(rollups, "proj-2", "emp-1")
		require.True(t, ok)
		assert.Equal(t, 2000.0, r.Cost)
	})

	t.Run("unapproved entries are ignored", func(t *testing.T) {
		entries := []entity.TimeEntry{
			approved("te-1", "emp-1", "proj-1", 1),
			{ID: "te-2", EmployeeID: "emp-1", ProjectID: "proj-1", Hours: 9},
		}

		rollups, err := Rollup(entries, employees)
		require.NoError(t, err)
		require.Len(t, rollups, 1)
		assert.Equal(t, 1.0, rollups[0].Hours)
	})

	t.Run("unknown employee keeps hours at zero cost", func(t *testing.T) {
		entries := []entity.TimeEntry{approved("te-1", "ghost", "proj-1", 6)}

		rollups, err := Rollup(entries, employees)
		require.NoError(t, err)
		require.Len(t, rollups, 1)
		assert.Equal(t, 6.0, rollups[0].Hours)
		assert.Equal(t, 0.0, rollups[0].Cost)
	})

	t.Run("negative hours are a contract violation", func(t *testing.T) {
		entries := []entity.TimeEntry{approved("te-1", "emp-1", "proj-1", -1)}

		_, err := Rollup(entries, employees)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrContractViolation))
	})

	t.Run("NaN hours are a contract violation", func(t *testing.T) {
		entries := []entity.TimeEntry{approved("te-1", "emp-1", "proj-1", math.NaN())}

		_, err := Rollup(entries, employees)
		assert.ErrorIs(t, err, ErrContractViolation)
	})

	t.Run("cost is never negative", func(t *testing.T) {
		entries := []entity.TimeEntry{
			approved("te-1", "emp-1", "proj-1", 0),
			approved("te-2", "emp-2", "proj-2", 3),
		}

		rollups, err := Rollup(entries, employees)
		require.NoError(t, err)
		for _, r := range rollups {
			assert.GreaterOrEqual(t, r.Cost, 0.0)
		}
	})
}

func TestEmployeeTotals(t *testing.T) {
	rollups := []entity.CostRollup{
		{ProjectID: "proj-1", EmployeeID: "emp-2", Hours: 2, Cost: 160},
		{ProjectID: "proj-1", EmployeeID: "emp-1", Hours: 1, Cost: 500},
		{ProjectID: "proj-2", EmployeeID: "emp-1", Hours: 4, Cost: 2000},
	}

	totals := EmployeeTotals(rollups)
	require.Len(t, totals, 2)
	assert.Equal(t, entity.EmployeeTotal{EmployeeID: "emp-1", Hours: 5, Cost: 2500}, totals[0])
	assert.Equal(t, entity.EmployeeTotal{EmployeeID: "emp-2", Hours: 2, Cost: 160}, totals[1])
}
