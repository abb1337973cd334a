// Package settings decodes the LSP initializationOptions/
// workspace/didChangeConfiguration payload into a typed Options struct,
// the way gopls/internal/settings decodes its own client-supplied
// configuration map: one OptionResult per key, unknown keys reported as
// soft errors rather than aborting the decode.
package settings

import "fmt"

// Options is the server's recognized configuration surface.
type Options struct {
	DiagnosticsEnable   bool
	DiagnosticsOnChange bool
	DiagnosticsOnSave   bool

	LintEnable bool
	LintOnSave bool

	FormatOnSave bool

	ToolchainPromptInstall bool
	ToolchainSolcJobs      int
}

// Default returns the server's built-in defaults, applied before any
// client-supplied configuration is layered on top.
func Default() Options {
	return Options{
		DiagnosticsEnable:      true,
		DiagnosticsOnChange:    true,
		DiagnosticsOnSave:      true,
		LintEnable:             true,
		LintOnSave:             true,
		FormatOnSave:           false,
		ToolchainPromptInstall: true,
		ToolchainSolcJobs:      0, // 0 means no explicit job count; the value is only recorded in the project input
	}
}

// SoftError is an error that does not affect the functionality of the
// options it's attached to — an unknown or deprecated key the caller
// should log and move past, not reject the whole configuration over.
type SoftError struct{ msg string }

func (e *SoftError) Error() string { return e.msg }

// OptionResult is the outcome of applying one configuration key.
type OptionResult struct {
	Name  string
	Value any
	Error error
}

// OptionResults is every OptionResult from one Decode call, in the
// arbitrary order Go map iteration supplies.
type OptionResults []OptionResult

// Decode applies raw (the client's configuration map) onto options,
// which the caller typically seeds with Default() first. Unknown keys
// produce a SoftError rather than failing the call.
func Decode(options *Options, raw map[string]any) OptionResults {
	var results OptionResults
	for name, value := range raw {
		results = append(results, options.set(name, value))
	}
	return results
}

func (o *Options) set(name string, value any) OptionResult {
	r := OptionResult{Name: name, Value: value}
	switch name {
	case "diagnostics.enable":
		r.setBool(&o.DiagnosticsEnable)
	case "diagnostics.onChange":
		r.setBool(&o.DiagnosticsOnChange)
	case "diagnostics.onSave":
		r.setBool(&o.DiagnosticsOnSave)
	case "lint.enable":
		r.setBool(&o.LintEnable)
	case "lint.onSave":
		r.setBool(&o.LintOnSave)
	case "format.onSave":
		r.setBool(&o.FormatOnSave)
	case "toolchain.promptInstall":
		r.setBool(&o.ToolchainPromptInstall)
	case "toolchain.solcJobs":
		r.setInt(&o.ToolchainSolcJobs)
	default:
		r.Error = &SoftError{fmt.Sprintf("unrecognized setting %q", name)}
	}
	return r
}

func (r *OptionResult) setBool(dst *bool) {
	b, ok := r.Value.(bool)
	if !ok {
		r.Error = fmt.Errorf("setting %q: invalid type %T, expected bool", r.Name, r.Value)
		return
	}
	*dst = b
}

func (r *OptionResult) setInt(dst *int) {
	switch v := r.Value.(type) {
	case int:
		*dst = v
	case float64: // JSON numbers decode as float64
		*dst = int(v)
	default:
		r.Error = fmt.Errorf("setting %q: invalid type %T, expected number", r.Name, r.Value)
	}
}
