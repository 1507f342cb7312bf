package log

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestLog_FormatsFields(t *testing.T) {
	out := &syncBuffer{}
	SetOutput(out)

	Info(CatWorkspace, "opened item", "pane", 0, "title", "a")

	line := out.String()
	require.Contains(t, line, "[INFO] [workspace] opened item")
	require.Contains(t, line, "pane=0")
	require.Contains(t, line, "title=a")
}

func TestLog_OddFieldCount(t *testing.T) {
	out := &syncBuffer{}
	SetOutput(out)

	Debug(CatPane, "dangling", "orphan")

	require.Contains(t, out.String(), "orphan=<missing>")
}

func TestLog_ErrorErr(t *testing.T) {
	out := &syncBuffer{}
	SetOutput(out)

	ErrorErr(CatProject, "load failed", errors.New("boom"), "path", "a.txt")
	ErrorErr(CatProject, "no error", nil)

	require.Contains(t, out.String(), "error=boom")
	require.Contains(t, out.String(), "error=<nil>")
}

func TestLog_MinLevelAndDisable(t *testing.T) {
	out := &syncBuffer{}
	SetOutput(out)

	SetMinLevel(LevelWarn)
	Info(CatConfig, "hidden")
	Warn(CatConfig, "shown")

	SetEnabled(false)
	Error(CatConfig, "also hidden")

	require.NotContains(t, out.String(), "hidden")
	require.Contains(t, out.String(), "shown")
}

func TestLog_ListenerReceivesLines(t *testing.T) {
	SetOutput(&syncBuffer{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := Subscribe(ctx)
	require.NotNil(t, ch)

	Warn(CatCache, "evicted", "key", "k")

	select {
	case ev := <-ch:
		require.Contains(t, ev.Payload, "[WARN] [cache] evicted key=k")
	case <-time.After(time.Second):
		require.FailNow(t, "no log event published")
	}
}

func TestLog_InitWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")

	cleanup, err := Init(path)
	require.NoError(t, err)

	Info(CatRegistry, "registered", "model", "*project.Buffer")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "[INFO] [registry] registered model=*project.Buffer")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		" error ": LevelError,
		"bogus":   LevelInfo,
	}
	for in, want := range tests {
		require.Equal(t, want, ParseLevel(in), in)
	}
}
