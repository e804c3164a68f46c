package segment

// Export internal interfaces for testing.
// This file is only compiled during tests (suffix _test.go).

// DirCreator exports dirCreator interface for testing.
type DirCreator = dirCreator

// FileStatter exports fileStatter interface for testing.
type FileStatter = fileStatter
