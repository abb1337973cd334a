package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultEnablesDiagnosticsAndLint(t *testing.T) {
	o := Default()
	assert.True(t, o.DiagnosticsEnable)
	assert.True(t, o.LintEnable)
	assert.False(t, o.FormatOnSave)
}

func TestDecodeAppliesRecognizedKeys(t *testing.T) {
	o := Default()
	results := Decode(&o, map[string]any{
		"diagnostics.onSave": false,
		"format.onSave":      true,
		"toolchain.solcJobs": float64(4),
	})

	assert.False(t, o.DiagnosticsOnSave)
	assert.True(t, o.FormatOnSave)
	assert.Equal(t, 4, o.ToolchainSolcJobs)
	for _, r := range results {
		assert.NoError(t, r.Error)
	}
}

func TestDecodeUnknownKeyIsSoftError(t *testing.T) {
	o := Default()
	results := Decode(&o, map[string]any{"unknown.key": true})

	assert.Len(t, results, 1)
	var soft *SoftError
	assert.ErrorAs(t, results[0].Error, &soft)
}

func TestDecodeWrongTypeIsHardError(t *testing.T) {
	o := Default()
	results := Decode(&o, map[string]any{"lint.enable": "yes"})

	assert.Len(t, results, 1)
	var soft *SoftError
	assert.NotErrorAs(t, results[0].Error, &soft)
	assert.Error(t, results[0].Error)
}
