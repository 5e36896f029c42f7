// Package frontmatter splits a raw post blob into its leading metadata block
// and body, and serializes edited metadata back into the same format.
//
// The block format is a deliberately small subset: one `key: value` pair per
// line where the value is a quoted or bare string, or a bracketed list of
// strings. It is not YAML; nested mappings and block scalars are rejected and
// the block degrades into body text instead of failing the render.
package frontmatter
