package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWrapsCauseIntoMessage(t *testing.T) {
	err := New(ParseFailure, "bad token at %d", 12)
	assert.ErrorContains(t, err, "ParseFailure")
	assert.ErrorContains(t, err, "bad token at 12")
}

func TestWrapPreservesUnderlyingCauseForUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(InternalError, cause)
	assert.ErrorIs(t, err, cause)
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(InternalError, nil))
}

func TestCodeMapsEachKind(t *testing.T) {
	cases := map[Kind]int{
		RequestCancelled:      codeRequestCancelled,
		InternalError:         codeInternalError,
		ServerNotInitialized:  codeServerNotInitialized,
		ResolutionFailure:     codeResolutionFailure,
		ParseFailure:          codeParseFailure,
		DiagnosticTaskFailure: codeDiagnosticTaskFailed,
	}
	for kind, code := range cases {
		err := New(kind, "x")
		assert.Equal(t, code, Code(err))
	}
}

func TestCodeOnUnclassifiedErrorFallsBackToInternal(t *testing.T) {
	assert.Equal(t, codeInternalError, Code(errors.New("plain")))
}

func TestKindOfReportsFalseForUnclassifiedError(t *testing.T) {
	_, ok := KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestKindOfReportsTrueAndCorrectKind(t *testing.T) {
	err := New(ResolutionFailure, "nope")
	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, ResolutionFailure, kind)
}
