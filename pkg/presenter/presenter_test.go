package presenter

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func newTestPresenter() (*TerminalPresenter, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	p := NewWithOptions(&out, &errOut, ColorNever)
	return p, &out, &errOut
}

func TestErrorGoesToStderr(t *testing.T) {
	p, out, errOut := newTestPresenter()

	p.Error(errors.New("boom"), "loading skill")

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "[ERROR] loading skill: boom")
}

func TestErrorNilIsNoop(t *testing.T) {
	p, _, errOut := newTestPresenter()
	p.Error(nil, "context")
	assert.Empty(t, errOut.String())
}

func TestSuccessWarningInfo(t *testing.T) {
	p, out, _ := newTestPresenter()

	p.Success("installed")
	p.Warning("skipped")
	p.Info("done")

	assert.Contains(t, out.String(), "✓ installed")
	assert.Contains(t, out.String(), "⚠ skipped")
	assert.Contains(t, out.String(), "done")
}

func TestQuietSuppressesNonErrors(t *testing.T) {
	p, out, errOut := newTestPresenter()
	p.SetQuiet(true)

	p.Success("installed")
	p.Warning("skipped")
	p.Info("done")
	p.Section("header")
	p.Separator()

	assert.Empty(t, out.String())

	// Errors are never suppressed
	p.Error(errors.New("boom"), "")
	assert.Contains(t, errOut.String(), "boom")
	assert.True(t, p.IsQuiet())
}

func TestSectionUnderline(t *testing.T) {
	p, out, _ := newTestPresenter()
	p.Section("Skills")
	assert.Contains(t, out.String(), "Skills\n------\n")
}
