// Package filesystem provides filesystem implementations for dodex.
//
// This package contains implementations of the types.FS interface:
// the OS filesystem used by the command line tool and afero backed
// filesystems used by tests.
package filesystem
