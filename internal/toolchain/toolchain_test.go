package toolchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerStartsUnknown(t *testing.T) {
	tr := NewTracker()
	assert.Equal(t, Unknown, tr.Status().Kind)
	assert.False(t, tr.NeedsInstallPrompt())
}

func TestTrackerSetReportsChange(t *testing.T) {
	tr := NewTracker()

	changed := tr.Set(Status{Kind: Found, Path: "/usr/bin/solc", Version: "0.8.24"})
	assert.True(t, changed)
	assert.Equal(t, Found, tr.Status().Kind)

	changed = tr.Set(Status{Kind: Found, Path: "/usr/bin/solc", Version: "0.8.24"})
	assert.False(t, changed)
}

func TestTrackerMissingNeedsInstallPrompt(t *testing.T) {
	tr := NewTracker()
	tr.Set(Status{Kind: Missing})
	assert.True(t, tr.NeedsInstallPrompt())
}
