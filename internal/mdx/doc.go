// Package mdx compiles post bodies written in a practical MDX subset into HTML.
//
// Markdown is rendered with goldmark. Capitalised JSX-style tags such as
// <Callout type="warning">...</Callout> or <Image src="..." /> are resolved
// against a Registry of components and rendered with their compiled children.
// Lowercase tags pass through as raw HTML with className rewritten to class.
// Fenced and inline code are never interpreted.
//
// A Compiler holds configuration only: every Compile call builds its own
// goldmark engine and parser context, and registries are immutable once built.
package mdx
