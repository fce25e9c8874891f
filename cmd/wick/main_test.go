package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gowick/internal/logging"
)

const energyDoc = `
spaces:
  - {label: o, type: occupied, indices: [i, j, k, l, m, n]}
  - {label: v, type: unoccupied, indices: [a, b, c, d, e, f]}
operators:
  - {name: F, op: {label: f, components: ["o+ v"]}}
  - {name: T1, op: {label: t, components: ["v+ o"]}}
expression: {product: [{ref: F}, {ref: T1}]}
`

func writeDoc(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "energy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestContractCommand(t *testing.T) {
	path := writeDoc(t, energyDoc)
	out, err := execute(t, "contract", "-f", path, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "f^{v0}_{o0} t^{o0}_{v0}")
	assert.Contains(t, out, "# |")
}

func TestContractCommand_BadFormat(t *testing.T) {
	path := writeDoc(t, energyDoc)
	_, err := execute(t, "contract", "-f", path, "--format", "pdf")
	assert.Error(t, err)
	outputFormat = "text"
}

func TestSpacesCommand(t *testing.T) {
	path := writeDoc(t, energyDoc)
	out, err := execute(t, "spaces", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "occupied")
	assert.Contains(t, out, "unoccupied")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "wick ")
}

func TestWatch(t *testing.T) {
	logger = logging.Nop()
	path := writeDoc(t, energyDoc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changed := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- watch(ctx, path, 20*time.Millisecond, func() { changed <- struct{}{} })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(energyDoc+"\n"), 0o644))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("want a change notification, got none")
	}
	cancel()
	assert.NoError(t, <-done)
}
