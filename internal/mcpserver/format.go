package mcpserver

// MentionFormatContract describes the markup conventions LLM consumers must
// follow when writing manuscript content.
const MentionFormatContract = `# Scribe Manuscript Markup Contract

Content files are plain Markdown with a few Scribe-specific conventions.

## Character mentions

` + "```" + `markdown
@Elena met @[John Smith] at the harbor.
` + "```" + `

1. **Single-word names** use the bare form: ` + "`" + `@Name` + "`" + `. The name is one run of
   letters, digits, or underscores.
2. **Multi-word names** use the bracketed form: ` + "`" + `@[First Last]` + "`" + `. Brackets never
   span lines.
3. Mentions are **case-sensitive**: ` + "`" + `@elena` + "`" + ` and ` + "`" + `@Elena` + "`" + ` are different characters.
4. Every mentioned character gets a generated card in the card store. Do not
   edit the "Story References" section or the trailing footer of a card; they
   are rewritten on every scan.

## Structure

1. Markdown headings (` + "`" + `#` + "`" + ` through ` + "`" + `######` + "`" + `) form the outline. Depth-1
   headings containing "act" or "part" open acts; chapter headings follow the
   ` + "`" + `Chapter N: Title` + "`" + ` convention.
2. Dotted chapter numbers (` + "`" + `1.2` + "`" + `, ` + "`" + `2.10` + "`" + `) sort numerically, not textually.

## Markers and tasks

1. Story markers are full lines starting with ` + "`" + `#!` + "`" + `, optionally categorised:
   ` + "`" + `#![Event] The bridge collapses.` + "`" + `
2. Inline tasks use ` + "`" + `{TYPE: text}` + "`" + ` with an upper-case type, e.g.
   ` + "`" + `{TODO: tighten this scene}` + "`" + ` or ` + "`" + `{RESEARCH: 1870s rail travel}` + "`" + `.

## Word counts

Markup (front matter, headings, mentions syntax, markers, tasks, notes
sections titled "Notes" / "Writer's Notes" / "Author's Notes", scene-break
lines) is stripped before counting; mention names and link text still count.

## Files

1. File paths end with ` + "`" + `.md` + "`" + ` and use forward slashes.
2. Encoding is UTF-8 with a trailing newline.
`
