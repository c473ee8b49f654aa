package platform

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/beanapologist/ProductiveMining-sub001/internal/model"
)

func TestComputeScalesWithDifficulty(t *testing.T) {
	e := NewEngine(42)

	for _, workType := range model.WorkTypes {
		result := e.Compute(workType, 60)
		require.Equal(t, workType, result.WorkType)
		require.Equal(t, 60, result.Difficulty)
		require.GreaterOrEqual(t, result.ComputationTime, 60*0.01)
		require.LessOrEqual(t, result.ComputationTime, 60*0.05)
		require.InDelta(t, result.ComputationTime*energyRates[workType], result.EnergyConsumed, 1e-9)
		require.NotEmpty(t, result.Summary)
	}
}

func TestComputeUnknownWorkTypeUsesDefaultRate(t *testing.T) {
	e := NewEngine(1)
	result := e.Compute("unknown_problem", 10)
	require.InDelta(t, result.ComputationTime*0.05, result.EnergyConsumed, 1e-9)
}

func TestIntnStaysInRange(t *testing.T) {
	e := NewEngine(7)
	for i := 0; i < 1000; i++ {
		n := e.Intn(9)
		require.GreaterOrEqual(t, n, 0)
		require.Less(t, n, 9)
	}
}
