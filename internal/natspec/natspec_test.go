package natspec

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumosimmo/solidity-analyzer/internal/syntax"
)

func comment(text string) syntax.Comment {
	return syntax.Comment{Text: text, NatSpec: true}
}

func TestParseTaggedSections(t *testing.T) {
	comments := []syntax.Comment{
		comment("/// @notice Transfers tokens between accounts."),
		comment("/// @param from The sender."),
		comment("/// @param to The recipient."),
		comment("/// @return ok Whether the transfer succeeded."),
	}
	doc := Parse(comments)

	notice, ok := doc.section(TagNotice, "")
	if assert.True(t, ok) {
		assert.Equal(t, "Transfers tokens between accounts.", notice.Text())
	}
	from, ok := doc.section(TagParam, "from")
	if assert.True(t, ok) {
		assert.Equal(t, "The sender.", from.Text())
	}
	ret, ok := doc.section(TagReturn, "ok")
	if assert.True(t, ok) {
		assert.Equal(t, "Whether the transfer succeeded.", ret.Text())
	}
}

func TestParseMergesUntaggedContinuationLines(t *testing.T) {
	comments := []syntax.Comment{
		comment("/// @dev First line."),
		comment("/// Second line, no tag."),
	}
	doc := Parse(comments)
	dev, ok := doc.section(TagDev, "")
	if assert.True(t, ok) {
		assert.Equal(t, "First line. Second line, no tag.", dev.Text())
	}
}

func TestParseBlockComment(t *testing.T) {
	comments := []syntax.Comment{
		comment("/**\n * @notice Mints new tokens.\n * @param amount The amount to mint.\n */"),
	}
	doc := Parse(comments)
	notice, ok := doc.section(TagNotice, "")
	if assert.True(t, ok) {
		assert.Equal(t, "Mints new tokens.", notice.Text())
	}
	p, ok := doc.section(TagParam, "amount")
	if assert.True(t, ok) {
		assert.Equal(t, "The amount to mint.", p.Text())
	}
}

func TestParseCustomTag(t *testing.T) {
	comments := []syntax.Comment{
		comment("/// @custom:security-contact security@example.com"),
	}
	doc := Parse(comments)
	s, ok := doc.section(TagCustom, "security-contact")
	if assert.True(t, ok) {
		assert.Equal(t, "security@example.com", s.Text())
	}
}

func TestParseIgnoresNonNatspecComments(t *testing.T) {
	comments := []syntax.Comment{
		{Text: "// just a regular comment", NatSpec: false},
	}
	doc := Parse(comments)
	assert.Empty(t, doc.Sections)
}

func TestRenderProducesLabeledParagraphsAndLists(t *testing.T) {
	doc := Parse([]syntax.Comment{
		comment("/// @notice Does the thing."),
		comment("/// @param a The first argument."),
	})
	out := Render(doc, nil)
	assert.Contains(t, out, "**Notice**")
	assert.Contains(t, out, "Does the thing.")
	assert.Contains(t, out, "**Parameters**")
	assert.Contains(t, out, "- `a`: The first argument.")
}

func TestLinkifySkipsFencedCodeBlocks(t *testing.T) {
	resolve := func(target string) (LinkTarget, bool) {
		return LinkTarget{URI: "file:///A.sol", Line: 4}, true
	}
	text := "See {Foo.bar} for details.\n\n```\n{Foo.bar} stays verbatim\n```\n"
	out := linkify(text, resolve)
	assert.Contains(t, out, "[`{Foo.bar}`](file:///A.sol#L4)")
	assert.Contains(t, out, "```\n{Foo.bar} stays verbatim\n```")
}

func TestLinkifyLeavesUnresolvedReferencesVerbatim(t *testing.T) {
	resolve := func(target string) (LinkTarget, bool) { return LinkTarget{}, false }
	out := linkify("See {Unknown} here.", resolve)
	assert.Contains(t, out, "{Unknown}")
	assert.NotContains(t, out, "](")
}

func TestRenderPlainStripsMarkdown(t *testing.T) {
	plain := RenderPlain("**Notice**\n\nDoes the thing.\n\n**Parameters**\n\n- `a`: The first argument.")
	assert.Contains(t, plain, "Notice")
	assert.Contains(t, plain, "Does the thing.")
	assert.Contains(t, plain, "a")
	assert.NotContains(t, plain, "**")
}

func TestLineOf(t *testing.T) {
	src := []byte("line one\nline two\nline three")
	assert.Equal(t, 1, LineOf(src, 0))
	assert.Equal(t, 2, LineOf(src, len("line one\n")))
	assert.Equal(t, 3, LineOf(src, len("line one\nline two\n")))
}
