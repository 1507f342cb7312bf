package editor

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/panekit/internal/project"
)

func newBuffer(text string) *project.Buffer {
	return project.NewBuffer(project.NewPath("wt", "src/main.go"), 7, text, "UTF-8")
}

func TestTitle(t *testing.T) {
	e := New(nil, newBuffer("a"), DefaultSettings())
	require.Equal(t, "main.go", e.Title())

	e.Replace("b")
	require.Equal(t, "main.go ●", e.Title())

	untitled := New(nil, project.NewUntitledBuffer(""), Settings{})
	require.Equal(t, "untitled", untitled.Title())
}

func TestProjectItemIsTheBuffer(t *testing.T) {
	buf := newBuffer("x")
	e := New(nil, buf, DefaultSettings())
	require.Same(t, buf, e.ProjectItem())
	id, ok := e.ProjectItem().EntryID()
	require.True(t, ok)
	require.Equal(t, project.EntryID(7), id)
}

func TestChangesAndPatch(t *testing.T) {
	e := New(nil, newBuffer("hello world\n"), DefaultSettings())
	ins, del := e.Changes()
	require.Zero(t, ins)
	require.Zero(t, del)
	require.Empty(t, e.Patch())

	e.Replace("hello there world\n")
	ins, del = e.Changes()
	require.Equal(t, len("there "), ins)
	require.Zero(t, del)
	require.Contains(t, e.Patch(), "@@")
}

func TestRender(t *testing.T) {
	e := New(nil, newBuffer("a\tb\nsecond line that is long\nthird\n"), Settings{TabWidth: 2, ShowLineNumbers: true})

	out := ansi.Strip(e.Render(12, 2))
	lines := splitLines(out)
	require.Len(t, lines, 2)
	require.Equal(t, "1 │ a b", lines[0])
	require.LessOrEqual(t, ansi.StringWidth(lines[1]), 12)
	require.Contains(t, lines[1], "…")

	plain := New(nil, newBuffer("x\n"), Settings{})
	require.Equal(t, "x", plain.Render(10, 10))
	require.Empty(t, plain.Render(0, 10))
}

func TestExpandTabs(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"no tabs", "no tabs"},
		{"\tx", "    x"},
		{"ab\tx", "ab  x"},
		{"abcd\tx", "abcd    x"},
		{"界\tx", "界  x"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, expandTabs(tt.in, 4), tt.in)
	}
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := range len(s) {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}
