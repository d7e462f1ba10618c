package progress

import (
	"bytes"
	"context"
	"errors"
	"os"
	"runtime"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewModel(t *testing.T) {
	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	m := NewModel("calling openai/gpt-4o", start)

	assert.Equal(t, "calling openai/gpt-4o", m.label)
	assert.False(t, m.done)
	assert.NotNil(t, m.Init())
}

func TestModel_Update_Done(t *testing.T) {
	m := NewModel("x", time.Now())
	wantErr := errors.New("boom")

	updated, cmd := m.Update(doneMsg{err: wantErr})
	model := updated.(Model)
	assert.True(t, model.done)
	assert.Equal(t, wantErr, model.err)
	assert.NotNil(t, cmd) // tea.Quit
	assert.Equal(t, "", model.View())
}

func TestModel_Update_Tick(t *testing.T) {
	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	m := NewModel("waiting", start)

	updated, cmd := m.Update(tickMsg(start.Add(3 * time.Second)))
	model := updated.(Model)
	assert.NotNil(t, cmd)
	assert.Contains(t, model.View(), "waiting")
	assert.Contains(t, model.View(), "3s")
}

func TestModel_Update_SpinnerTick(t *testing.T) {
	m := NewModel("x", time.Now())
	updated, _ := m.Update(spinner.TickMsg{})
	_, ok := updated.(Model)
	assert.True(t, ok)
}

func TestRun_ReturnsCallError(t *testing.T) {
	var buf bytes.Buffer
	wantErr := errors.New("call failed")

	err := Run(context.Background(), &buf, "calling", func(ctx context.Context) error {
		return wantErr
	})
	assert.Equal(t, wantErr, err)
}

func TestRun_Success(t *testing.T) {
	var buf bytes.Buffer
	called := false

	err := Run(context.Background(), &buf, "calling", func(ctx context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestIsTerminal_RegularFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, IsTerminal(f))
}

func TestIsTerminal_DevNull(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("NUL is reported as a character device")
	}
	f, err := os.Open(os.DevNull)
	if err != nil {
		t.Skipf("no %s: %v", os.DevNull, err)
	}
	defer f.Close()

	assert.False(t, IsTerminal(f))
	assert.False(t, IsTerminal(nil))
}
