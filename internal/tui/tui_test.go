package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/beanapologist/ProductiveMining-sub001/internal/dashboard"
	"github.com/beanapologist/ProductiveMining-sub001/internal/model"
)

type fakeSource struct {
	snap dashboard.Snapshot
}

func (f *fakeSource) Snapshot() dashboard.Snapshot { return f.snap }

func TestQuitKeys(t *testing.T) {
	m := New(&fakeSource{})
	quitters := []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	}
	for _, key := range quitters {
		_, cmd := m.Update(key)
		require.NotNil(t, cmd, "key %q should quit", key.String())
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	require.Nil(t, cmd)
}

func TestTickRefreshesSnapshot(t *testing.T) {
	src := &fakeSource{}
	m := New(&fakeSource{})
	m.source = src

	src.snap = dashboard.Snapshot{
		Connected: true,
		Metrics:   &model.NetworkMetrics{ActiveMiners: 12},
	}
	next, cmd := m.Update(tickMsg(time.Now()))
	require.NotNil(t, cmd)

	got := next.(Model)
	require.True(t, got.snap.Connected)
	require.Equal(t, 12, got.snap.Metrics.ActiveMiners)
}

func TestViewShowsState(t *testing.T) {
	src := &fakeSource{snap: dashboard.Snapshot{
		Connected: true,
		Metrics:   &model.NetworkMetrics{ActiveMiners: 7, NetworkHashrate: 55000},
		Operations: []model.Operation{{
			WorkType: "riemann_zero", Difficulty: 50, Progress: 0.8, Status: model.StatusActive,
		}},
		Blocks: []model.Block{{
			Index: 3, BlockHash: "abcdef0123456789", TotalScientificValue: 1800,
			Timestamp: time.Now(),
		}},
		Discoveries: []model.Discovery{{
			WorkType: "yang_mills", Difficulty: 60, ScientificValue: 2100,
			Timestamp: time.Now(),
		}},
	}}

	view := New(src).View()
	require.Contains(t, view, "live")
	require.Contains(t, view, "riemann_zero")
	require.Contains(t, view, "abcdef012345")
	require.Contains(t, view, "yang_mills")
}

func TestViewEmptyState(t *testing.T) {
	view := New(&fakeSource{}).View()
	require.Contains(t, view, "offline")
	require.Contains(t, view, "waiting for metrics")
	require.Contains(t, view, "no operations")
	require.Contains(t, view, "no blocks yet")
	require.Contains(t, view, "no discoveries yet")
}
