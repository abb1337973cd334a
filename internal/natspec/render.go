package natspec

import (
	"fmt"
	"strings"
)

// LinkTarget is what a resolved {Target} reference needs to render a
// link: the file it points into (as a file:// URI) and a 1-based line
// number.
type LinkTarget struct {
	URI  string
	Line int
}

// LinkResolver resolves a {Target} reference string (one of `member`,
// `Contract.member`, `Contract::member`, `Contract-member`) to its
// definition, or reports false if it doesn't resolve.
type LinkResolver func(target string) (LinkTarget, bool)

var labels = map[Tag]string{
	TagTitle:  "Title",
	TagAuthor: "Author",
	TagNotice: "Notice",
	TagDev:    "Dev",
	TagParam:  "Parameters",
	TagReturn: "Returns",
}

// Render produces doc's markdown rendering: paragraph sections (title,
// author, notice, dev, custom) as a bold label followed by its text on
// the next line; list sections (param, return) grouped under one bold
// label with one `- \`name\`: text` item per entry. {Target} references
// inside the rendered text are linkified via resolve, skipping fenced
// code blocks. inheritdoc tags never render: they're consumed by
// ResolveInheritdoc before Render runs.
func Render(doc *Doc, resolve LinkResolver) string {
	var b strings.Builder
	writeParagraph(&b, doc, TagTitle, "")
	writeParagraph(&b, doc, TagAuthor, "")
	writeParagraph(&b, doc, TagNotice, "")
	writeParagraph(&b, doc, TagDev, "")
	writeList(&b, doc, TagParam)
	writeList(&b, doc, TagReturn)
	writeCustomSections(&b, doc)

	return linkify(b.String(), resolve)
}

// writeParagraph stacks every section of tag as its own paragraph under
// one shared bold label, since a doc comment may repeat @dev across
// several lines of its own prose.
func writeParagraph(b *strings.Builder, doc *Doc, tag Tag, key string) {
	var texts []string
	for _, s := range doc.Sections {
		if s.Tag != tag {
			continue
		}
		if key != "" && s.Key != key {
			continue
		}
		if t := s.Text(); t != "" {
			texts = append(texts, t)
		}
	}
	if len(texts) == 0 {
		return
	}
	if b.Len() > 0 {
		b.WriteString("\n\n")
	}
	fmt.Fprintf(b, "**%s**\n\n%s", labels[tag], strings.Join(texts, "\n\n"))
}

func writeList(b *strings.Builder, doc *Doc, tag Tag) {
	var items []Section
	for _, s := range doc.Sections {
		if s.Tag == tag {
			items = append(items, s)
		}
	}
	if len(items) == 0 {
		return
	}
	if b.Len() > 0 {
		b.WriteString("\n\n")
	}
	fmt.Fprintf(b, "**%s**\n\n", labels[tag])
	for i, s := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(b, "- `%s`: %s", s.Key, s.Text())
	}
}

func writeCustomSections(b *strings.Builder, doc *Doc) {
	for _, s := range doc.Sections {
		if s.Tag != TagCustom || s.Text() == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(b, "**%s**\n\n%s", s.Key, s.Text())
	}
}
