// Package stash captures the pre-run state of declared file paths and
// restores it on rollback.
//
// A captured Entry is plain data: the path, whether it existed, and (for
// regular files) its bytes and permission bits. Entry.Apply turns that
// data back into filesystem state:
//
//   - a path that did not exist is deleted, and deleting an already absent
//     path is a no-op;
//   - a path that was a regular file is overwritten with the captured
//     bytes.
//
// Directories cannot be stashed. Declaring one fails with
// UNSUPPORTED_STASH_KIND before anything is mutated.
package stash
