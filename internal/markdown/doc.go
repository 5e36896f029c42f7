// Package markdown imports Markdown and MDX files from disk into a content
// store. YAML metadata in the source files is projected onto the flat block
// vocabulary and re-serialized, so imported posts read back through the same
// splitter as posts written in the editor.
package markdown
