// Package fs abstracts the file operations behind atomic blob writes so that
// tests can inject failures.
//
// Production code uses [Default], which is [LocalFS]. Tests wrap it in a
// [FaultyFS]:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("snap", fs.Fault{FailAfterBytes: 1024})
//
// No operation takes a context.Context: local file operations are not
// interruptible at the syscall level.
package fs
