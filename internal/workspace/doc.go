// Package workspace stages the non-document members of an archive while the
// scene document is repaired.
//
// A workspace is backed by a go-billy filesystem: memfs for the default
// in-memory backend, or osfs rooted at a private temporary directory for the
// disk backend. Entries are staged once, read back in their original order
// with their original timestamps and modes, and the workspace is discarded
// with Close.
package workspace
