package ui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitrone/cloudconsole/cli/internal/diffview"
)

func numberedDoc(n int, changed map[int]string) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if text, ok := changed[i]; ok {
			b.WriteString(text)
		} else {
			fmt.Fprintf(&b, "line %d", i)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func newTestDiff(t *testing.T, opts diffview.Options, vs *diffview.VirtualScroll) DiffModel {
	t.Helper()
	viewer := diffview.NewViewer(opts, 0)
	t.Cleanup(viewer.Close)
	model := NewDiffModel(viewer, vs, false)
	model.width = 120
	return model
}

func TestDiffEmptyState(t *testing.T) {
	model := newTestDiff(t, diffview.Options{}, nil)
	assert.Contains(t, model.View(), "No diff yet")

	nilModel := NewDiffModel(nil, nil, false)
	updated, cmd := nilModel.Update(keyRunes("m"))
	assert.Nil(t, cmd)
	assert.Empty(t, updated.snap.Rows)
}

func TestDiffRendersReferenceRefresh(t *testing.T) {
	model := newTestDiff(t, diffview.Options{Mode: diffview.ModeSplit}, nil)
	model, cmd := model.Update(refsDiffMsg{title: "region", before: "a\nb\n", after: "a\nc\n"})
	assert.Nil(t, cmd)
	require.Len(t, model.snap.Rows, 2)

	view := model.View()
	assert.Contains(t, view, "Diff · region")
	assert.Contains(t, view, "split · folding off · scroll off · 2 rows, 1 changed")
	assert.Contains(t, view, "- b")
	assert.Contains(t, view, "+ c")
}

func TestDiffModeFoldingAndNumbersKeys(t *testing.T) {
	model := newTestDiff(t, diffview.Options{Mode: diffview.ModeSplit}, nil)
	model.SetInput("doc", "a\nb\nc\nd\n", "a\nb\nc\nX\n")
	require.Len(t, model.snap.Rows, 4)

	model, _ = model.Update(keyRunes("m"))
	assert.Equal(t, diffview.ModeUnified, model.snap.Options.Mode)
	assert.Len(t, model.snap.Rows, 5)

	model, _ = model.Update(keyRunes("f"))
	assert.True(t, model.snap.Options.Folding)
	assert.Len(t, model.snap.List, 3)
	assert.Contains(t, model.View(), "unchanged line")

	model, _ = model.Update(keyRunes("m"))
	assert.Equal(t, diffview.ModeSplit, model.snap.Options.Mode)

	assert.True(t, model.numbers)
	model, _ = model.Update(keyRunes("n"))
	assert.False(t, model.numbers)
}

func TestDiffOffsetScrollClamps(t *testing.T) {
	model := newTestDiff(t, diffview.Options{Mode: diffview.ModeUnified}, nil)
	model.SetInput("doc", numberedDoc(50, nil), numberedDoc(50, map[int]string{0: "first"}))
	require.Len(t, model.snap.List, 51)
	require.Equal(t, 20, model.page())

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, model.offset)

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	assert.Equal(t, 20, model.offset)
	win := model.window()
	require.Len(t, win.List, 20)
	assert.Equal(t, 20, win.List[0].Index)

	model, _ = model.Update(keyRunes("G"))
	assert.Equal(t, 31, model.offset)
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 31, model.offset)

	model, _ = model.Update(keyRunes("g"))
	assert.Equal(t, 0, model.offset)
}

func TestDiffToggleVirtualScroll(t *testing.T) {
	model := newTestDiff(t, diffview.Options{Mode: diffview.ModeUnified}, nil)
	model.SetInput("doc", numberedDoc(30, nil), numberedDoc(30, nil))
	assert.Equal(t, 0, model.snap.MinHeight)

	model, _ = model.Update(keyRunes("v"))
	require.NotNil(t, model.snap.Options.VirtualScroll)
	assert.Equal(t, 20, model.snap.Options.VirtualScroll.Height)
	assert.Equal(t, 30, model.snap.MinHeight)
	assert.Contains(t, model.View(), "scroll 0/30")

	model, _ = model.Update(keyRunes("v"))
	assert.Nil(t, model.snap.Options.VirtualScroll)
	assert.Len(t, model.snap.List, 30)
}

func TestDiffVirtualScrollWindow(t *testing.T) {
	vs := &diffview.VirtualScroll{Height: 5, LineMinHeight: 1, Delay: time.Millisecond}
	model := newTestDiff(t, diffview.Options{Mode: diffview.ModeUnified, VirtualScroll: vs}, vs)
	model.SetInput("doc", numberedDoc(30, nil), numberedDoc(30, map[int]string{29: "last"}))
	require.Equal(t, 31, model.snap.MinHeight)

	win := model.window()
	require.Len(t, win.List, 5)
	assert.Equal(t, 0, win.List[0].Top)

	time.Sleep(5 * time.Millisecond)
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	assert.Eventually(t, func() bool {
		model, _ = model.Update(diffChangedMsg{})
		return model.snap.ScrollTop == 5
	}, time.Second, 5*time.Millisecond)

	win = model.window()
	require.Len(t, win.List, 5)
	assert.Equal(t, 5, win.List[0].Top)

	time.Sleep(5 * time.Millisecond)
	model, _ = model.Update(keyRunes("G"))
	assert.Eventually(t, func() bool {
		model, _ = model.Update(diffChangedMsg{})
		return model.snap.ScrollTop == 26
	}, time.Second, 5*time.Millisecond)
}

func TestDiffSetSizeResizesVirtualScroll(t *testing.T) {
	model := newTestDiff(t, diffview.Options{Mode: diffview.ModeUnified}, nil)
	model.SetInput("doc", numberedDoc(10, nil), numberedDoc(10, nil))

	model.SetSize(100, 40)
	assert.Equal(t, 18, model.page())
	assert.Nil(t, model.snap.Options.VirtualScroll)

	model, _ = model.Update(keyRunes("v"))
	require.NotNil(t, model.snap.Options.VirtualScroll)
	assert.Equal(t, 18, model.snap.Options.VirtualScroll.Height)

	model.SetSize(100, 10)
	assert.Equal(t, 5, model.page())
	assert.Equal(t, 5, model.snap.Options.VirtualScroll.Height)
}
