// Package testutil provides filesystem doubles and helpers shared by the
// jobtx tests.
//
//   - MockFS: testify mock of types.FS, for asserting that a path was never
//     read, written or removed
//   - RecordingFS: wraps a real types.FS, records every call and can inject
//     failures for chosen operations
//   - WriteFiles, AssertFileContent, AssertNotExists: fixture setup and
//     checks against any types.FS
package testutil
