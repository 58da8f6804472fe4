package core

import "strings"

const (
	// SetKeyword introduces named file-list blocks: set(SOURCES ...).
	SetKeyword = "set"
	// IncludeDirectoriesKeyword introduces the path-list block.
	IncludeDirectoriesKeyword = "include_directories"
	// ProjectKeyword anchors block synthesis when no set() block exists yet.
	ProjectKeyword = "project"
	// SourceDirPlaceholder prefixes directory entries so they stay relative
	// to the manifest's own directory.
	SourceDirPlaceholder = "${CMAKE_CURRENT_SOURCE_DIR}"

	entryIndent = "    "
)

// DeclarationBlock is a located keyword(name ...) span inside manifest text.
// Offsets index the full document; Inner is the raw text between the group
// name and the closing parenthesis.
type DeclarationBlock struct {
	Keyword    string
	Name       string
	Start      int
	End        int
	InnerStart int
	Inner      string
}

// Entries returns the block's items in file order: inner text split on line
// breaks, trimmed, blank lines dropped.
func (b DeclarationBlock) Entries() []string {
	var entries []string
	for _, line := range strings.Split(b.Inner, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			entries = append(entries, line)
		}
	}
	return entries
}

// findNamedBlock locates the first keyword(name ...) block. The group name
// must be followed by a space, tab or line break. With strict=false the block
// ends at the first closing parenthesis after the name (the historically
// validated behavior); with strict=true parenthesis nesting is tracked so
// entries containing parentheses do not cut the block short.
func findNamedBlock(text, keyword, name string, strict bool) (DeclarationBlock, bool) {
	from := 0
	for {
		rel := strings.Index(text[from:], keyword)
		if rel < 0 {
			return DeclarationBlock{}, false
		}
		start := from + rel
		from = start + len(keyword)

		if start > 0 && isWordChar(text[start-1]) {
			continue
		}
		i := skipBlanks(text, start+len(keyword))
		if i >= len(text) || text[i] != '(' {
			continue
		}
		i = skipWhitespace(text, i+1)
		if !strings.HasPrefix(text[i:], name) {
			continue
		}
		i += len(name)
		if i >= len(text) || !isBlockSeparator(text[i]) {
			continue
		}

		end, ok := findBlockEnd(text, i, strict)
		if !ok {
			return DeclarationBlock{}, false
		}
		return DeclarationBlock{
			Keyword:    keyword,
			Name:       name,
			Start:      start,
			End:        end + 1,
			InnerStart: i,
			Inner:      text[i:end],
		}, true
	}
}

// findUnnamedBlock locates the first keyword(...) block regardless of what
// follows the opening parenthesis. Used for include_directories and
// project(), which carry no managed group name.
func findUnnamedBlock(text, keyword string, strict bool) (DeclarationBlock, bool) {
	blocks := scanKeywordBlocks(text, keyword, strict, 1)
	if len(blocks) == 0 {
		return DeclarationBlock{}, false
	}
	return blocks[0], true
}

// scanKeywordBlocks collects keyword(...) spans in document order. A limit of
// 0 means no limit.
func scanKeywordBlocks(text, keyword string, strict bool, limit int) []DeclarationBlock {
	var blocks []DeclarationBlock
	from := 0
	for {
		rel := strings.Index(text[from:], keyword)
		if rel < 0 {
			return blocks
		}
		start := from + rel
		from = start + len(keyword)

		if start > 0 && isWordChar(text[start-1]) {
			continue
		}
		i := skipBlanks(text, start+len(keyword))
		if i >= len(text) || text[i] != '(' {
			continue
		}
		inner := i + 1
		end, ok := findBlockEnd(text, inner, strict)
		if !ok {
			return blocks
		}
		blocks = append(blocks, DeclarationBlock{
			Keyword:    keyword,
			Start:      start,
			End:        end + 1,
			InnerStart: inner,
			Inner:      text[inner:end],
		})
		from = end + 1
		if limit > 0 && len(blocks) == limit {
			return blocks
		}
	}
}

// scanNamedBlocks finds every identifier(name ...) shape in the document, for
// loose whole-document scans (reference resolution). The name is the first
// whitespace-delimited token after the opening parenthesis.
func scanNamedBlocks(text string, strict bool) []DeclarationBlock {
	var blocks []DeclarationBlock
	i := 0
	for i < len(text) {
		if !isIdentStart(text[i]) || (i > 0 && isWordChar(text[i-1])) {
			i++
			continue
		}
		start := i
		for i < len(text) && isWordChar(text[i]) {
			i++
		}
		keyword := text[start:i]
		j := skipBlanks(text, i)
		if j >= len(text) || text[j] != '(' {
			continue
		}
		inner := j + 1
		end, ok := findBlockEnd(text, inner, strict)
		if !ok {
			break
		}
		nameStart := skipWhitespace(text, inner)
		nameEnd := nameStart
		for nameEnd < end && !isWhitespace(text[nameEnd]) && text[nameEnd] != ')' {
			nameEnd++
		}
		if nameEnd > nameStart {
			blocks = append(blocks, DeclarationBlock{
				Keyword:    keyword,
				Name:       text[nameStart:nameEnd],
				Start:      start,
				End:        end + 1,
				InnerStart: nameEnd,
				Inner:      text[nameEnd:end],
			})
		}
		i = end + 1
	}
	return blocks
}

// findBlockEnd returns the offset of the closing parenthesis for a block
// whose inner text starts at from. Loose mode stops at the first ')';
// strict mode balances nested parentheses.
func findBlockEnd(text string, from int, strict bool) (int, bool) {
	if !strict {
		rel := strings.IndexByte(text[from:], ')')
		if rel < 0 {
			return 0, false
		}
		return from + rel, true
	}
	depth := 1
	for i := from; i < len(text); i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// renderBlock emits the canonical form of a named block: group name on the
// header line, one indented entry per line, closing parenthesis on its own
// line. An empty entry list keeps the keyword/name shell.
func renderBlock(keyword, name string, entries []string) string {
	var b strings.Builder
	b.WriteString(keyword)
	b.WriteByte('(')
	b.WriteString(name)
	b.WriteByte('\n')
	for _, e := range entries {
		b.WriteString(entryIndent)
		b.WriteString(e)
		b.WriteByte('\n')
	}
	b.WriteByte(')')
	return b.String()
}

func renderUnnamedBlock(keyword string, entries []string) string {
	var b strings.Builder
	b.WriteString(keyword)
	b.WriteByte('(')
	b.WriteByte('\n')
	for _, e := range entries {
		b.WriteString(entryIndent)
		b.WriteString(e)
		b.WriteByte('\n')
	}
	b.WriteByte(')')
	return b.String()
}

// splice replaces text[start:end] with replacement, leaving everything
// outside the span untouched.
func splice(text string, start, end int, replacement string) string {
	return text[:start] + replacement + text[end:]
}

func isWordChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isBlockSeparator(c byte) bool {
	return isWhitespace(c)
}

// skipBlanks advances over spaces and tabs only.
func skipBlanks(text string, i int) int {
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	return i
}

// skipWhitespace advances over spaces, tabs and line breaks.
func skipWhitespace(text string, i int) int {
	for i < len(text) && isWhitespace(text[i]) {
		i++
	}
	return i
}
