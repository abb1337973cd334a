// Package natspec parses and renders Solidity NatSpec documentation
// comments: tagged sections (@title, @notice, @param, ...), @inheritdoc
// resolution across a contract's base list, and {Target} reference
// linkification.
package natspec

import (
	"strings"

	"github.com/lumosimmo/solidity-analyzer/internal/syntax"
)

// Tag names a NatSpec section kind.
type Tag string

const (
	TagTitle      Tag = "title"
	TagAuthor     Tag = "author"
	TagNotice     Tag = "notice"
	TagDev        Tag = "dev"
	TagParam      Tag = "param"
	TagReturn     Tag = "return"
	TagCustom     Tag = "custom"
	TagInheritdoc Tag = "inheritdoc"
)

// Section is one parsed tagged block. Key holds the parameter/return
// name for @param and @return, the tag name for @custom, and the base
// contract name for @inheritdoc; it is empty for title/author/notice/dev.
type Section struct {
	Tag   Tag
	Key   string
	Lines []string
}

// Text joins a section's merged lines into one paragraph.
func (s Section) Text() string {
	return strings.Join(s.Lines, " ")
}

// Doc is a declaration's parsed NatSpec comment.
type Doc struct {
	Sections []Section
}

// section returns the first section with the given tag and key ("" key
// matches any for tag kinds that don't carry one), or false if absent.
func (d *Doc) section(tag Tag, key string) (*Section, bool) {
	for i := range d.Sections {
		s := &d.Sections[i]
		if s.Tag != tag {
			continue
		}
		if key != "" && s.Key != key {
			continue
		}
		return s, true
	}
	return nil, false
}

// Inheritdoc returns the base contract named in an @inheritdoc tag, if
// present.
func (d *Doc) Inheritdoc() (string, bool) {
	s, ok := d.section(TagInheritdoc, "")
	if !ok {
		return "", false
	}
	return s.Key, true
}

// HasTag reports whether d already carries at least one section of the
// given tag (used by inheritdoc merging to only fill gaps).
func (d *Doc) HasTag(tag Tag, key string) bool {
	_, ok := d.section(tag, key)
	return ok
}

var tagPrefixes = []struct {
	tag    Tag
	prefix string
}{
	{TagTitle, "@title"},
	{TagAuthor, "@author"},
	{TagNotice, "@notice"},
	{TagDev, "@dev"},
	{TagParam, "@param"},
	{TagReturn, "@return"},
	{TagInheritdoc, "@inheritdoc"},
}

// Parse builds a Doc from a declaration's raw comments, keeping only the
// ones the scanner flagged as NatSpec (/// or /** ... */, not /* ... */
// or //). Untagged lines merge into the previous section's paragraph;
// leading untagged lines with no preceding tag become an implicit
// @notice, matching solc's own convention for a bare doc comment.
func Parse(comments []syntax.Comment) *Doc {
	doc := &Doc{}
	var cur *Section
	for _, c := range comments {
		if !c.NatSpec {
			continue
		}
		for _, line := range stripMarkers(c.Text) {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if tag, key, rest, ok := matchTag(line); ok {
				doc.Sections = append(doc.Sections, Section{Tag: tag, Key: key})
				cur = &doc.Sections[len(doc.Sections)-1]
				if rest != "" {
					cur.Lines = append(cur.Lines, rest)
				}
				continue
			}
			if cur == nil {
				doc.Sections = append(doc.Sections, Section{Tag: TagNotice})
				cur = &doc.Sections[len(doc.Sections)-1]
			}
			cur.Lines = append(cur.Lines, line)
		}
	}
	return doc
}

// matchTag recognizes a line's leading @tag, returning the tag, its key
// (param/return name, custom tag name, or inheritdoc contract name), and
// the remaining text on the line.
func matchTag(line string) (tag Tag, key string, rest string, ok bool) {
	if strings.HasPrefix(line, "@custom:") {
		body := line[len("@custom:"):]
		name, rest := splitWord(body)
		return TagCustom, name, rest, true
	}
	for _, tp := range tagPrefixes {
		if line != tp.prefix && !strings.HasPrefix(line, tp.prefix+" ") && !strings.HasPrefix(line, tp.prefix+"\t") {
			continue
		}
		body := strings.TrimSpace(strings.TrimPrefix(line, tp.prefix))
		switch tp.tag {
		case TagParam, TagReturn, TagInheritdoc:
			name, rest := splitWord(body)
			return tp.tag, name, rest, true
		default:
			return tp.tag, "", body, true
		}
	}
	return "", "", "", false
}

func splitWord(s string) (word, rest string) {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i+1:])
}

// stripMarkers splits a raw comment's text into content lines with its
// comment syntax (///, /**, leading *, trailing */) removed.
func stripMarkers(text string) []string {
	switch {
	case strings.HasPrefix(text, "///"):
		return []string{strings.TrimPrefix(text, "///")}
	case strings.HasPrefix(text, "//"):
		return []string{strings.TrimPrefix(text, "//")}
	case strings.HasPrefix(text, "/**"):
		body := strings.TrimSuffix(strings.TrimPrefix(text, "/**"), "*/")
		return splitBlockLines(body)
	case strings.HasPrefix(text, "/*"):
		body := strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/")
		return splitBlockLines(body)
	default:
		return []string{text}
	}
}

func splitBlockLines(body string) []string {
	raw := strings.Split(body, "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		l = strings.TrimPrefix(l, "*")
		out = append(out, l)
	}
	return out
}
