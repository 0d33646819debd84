package mcpserver

// NoteFormatContract describes the canonical Markdown note format that
// LLM consumers should expect when reading notes from the store.
const NoteFormatContract = `# MiniRef Note Format Contract

Every Markdown note served by MiniRef follows this structure.

## Structure

` + "```" + `markdown
---
id: note-id                         # REQUIRED – must equal the filename stem
title: Human-readable title         # REQUIRED – primary display name
tags:                               # OPTIONAL – YAML list; used for filtering
  - tag-one
  - tag-two
references:                         # OPTIONAL – ids of related notes
  - other-note
---

Body text in standard Markdown (GFM: tables, strikethrough, task lists).

Fenced code blocks with a language tag are syntax highlighted.
Inline math between single dollars ($E = mc^2$) and display math between
double dollars ($$...$$) are rendered as MathML.
` + "```" + `

## Rules

1. **YAML front matter is mandatory.** The ` + "`" + `---` + "`" + ` fences must be the first
   thing in the file (no leading blank lines).
2. **` + "`" + `id` + "`" + ` and ` + "`" + `title` + "`" + ` fields are required.** A note missing either is
   treated as if it did not exist.
3. **The id equals the filename stem.** ` + "`" + `my-note.md` + "`" + ` has id ` + "`" + `my-note` + "`" + `;
   ids never contain path separators.
4. **References** list the ids of related notes (no ` + "`" + `.md` + "`" + ` extension).
5. **Encoding** is UTF-8.

## Assets

- A note's attachments live in a sibling directory named ` + "`" + `<id>.assets/` + "`" + `.
- Every regular file in that directory is reported in the note's
  ` + "`" + `assets` + "`" + ` list with a guessed MIME type
  (` + "`" + `application/octet-stream` + "`" + ` when unknown).
- Fetch an asset over HTTP via ` + "`" + `/api/notes/{id}/assets/{filename}` + "`" + `.

## Example

` + "```" + `markdown
---
id: fourier-series
title: Fourier Series
tags:
  - math
  - analysis
references:
  - fourier-transform
---

# Fourier Series

A periodic function decomposes as
$$f(x) = a_0 + \sum_{n=1}^{\infty} a_n \cos(nx) + b_n \sin(nx)$$
where the coefficients follow from orthogonality.
` + "```" + `
`
