// Package files groups file-related functionality into sub-packages.
//
//   - filesystem: filesystem abstraction interfaces and implementations
//     (OS and in-memory)
//   - scanner: schema file discovery, canonical identity, and checksums
//
// # Usage
//
//	import (
//	    "github.com/skaldic/xsdc/internal/files/filesystem"
//	    "github.com/skaldic/xsdc/internal/files/scanner"
//	)
//
//	fileScanner := scanner.NewScanner(checksum.New())
//	result, err := fileScanner.ScanDirectory("./schemas")
package files
