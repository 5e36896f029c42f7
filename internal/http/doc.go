// Package http exposes the blog over net/http.
//
// Routes registered by API.Register:
//   - Reader: GET /blog/{slug...} (HTML), GET /api/render/{slug...} (JSON)
//   - Raw content: GET /api/mdx?id={slug}, POST /api/mdx
//   - Posts: /api/posts, /api/posts/recent, /api/posts/featured,
//     /api/posts/category/{categoryId}, /api/posts/slug/{slug...}, /api/posts/{id}
//   - Categories: /api/categories
//   - Editor: /admin/api/drafts, /admin/api/drafts/{slug...}, /admin/api/preview
//   - Session: GET /api/auth/me
//   - Metrics: GET /metrics when a handler is configured
//
// Mutating routes and the editor require an admin bearer token.
package http
