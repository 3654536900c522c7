package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer guards the view, which is written from the caller's goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Runs before TestInitLogger, while no sink exists.
func TestNewLoggerBeforeInit(t *testing.T) {
	l := NewLogger("early")
	assert.False(t, l.dev)
	assert.Nil(t, l.sink)
	assert.NotPanics(t, func() { l.Info("dropped") })
}

func TestInitLogger(t *testing.T) {
	dir := t.TempDir()
	view := &syncBuffer{}

	require.NoError(t, InitLogger(true, dir, view))

	l := NewLogger("test")
	l.Info("hello ", 42)
	l.Warn("careful")
	l.Error("broken")

	out := view.String()
	assert.Contains(t, out, "[green]DEBUG (test): hello 42[-]")
	assert.Contains(t, out, "[yellow]DEBUG (test): careful[-]")
	assert.Contains(t, out, "[red]DEBUG (test): broken[-]")

	Close()
	assert.NotPanics(t, func() { l.Info("after close") })
	Close()

	files, err := filepath.Glob(filepath.Join(dir, "vox_log_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello 42"`)
	assert.Contains(t, string(data), `"tag":"test"`)
	assert.Contains(t, string(data), `"level":"warn"`)
	assert.NotContains(t, string(data), "after close")
}

func TestTypesToString(t *testing.T) {
	assert.Equal(t, "INFO", Info.toString())
	assert.Equal(t, "FATAL", Fatal.toString())
	assert.Equal(t, "UNKNOWN", Types(9).toString())
}
