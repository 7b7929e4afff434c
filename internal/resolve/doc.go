// Package resolve turns a raw image reference found in a buffer into a
// concrete, fetchable resource.
//
// A reference is one of:
//   - a data URI (data:image/png;base64,...), decoded in place
//   - a remote URL (http:// or https://)
//   - a file:// URL or an absolute path
//   - a relative path, optionally starting with a configured alias
//
// Alias substitution only ever rewrites the leading directory portion of a
// path. Aliases are tried in configuration order and the first match wins; a
// prefix must end on a path segment boundary, so "~" rewrites "~/img/a.png"
// but never "~foo/a.png" or "file~name.png".
package resolve
