package xsdc

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess       = 0  // Generation completed successfully
	ExitGeneralError  = 1  // Unknown or unclassified error
	ExitUsageError    = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic         = 3  // Internal panic (unexpected crash)
	ExitConfigError   = 10 // Invalid configuration or parameters
	ExitNoSchemaFiles = 20 // No schema files found in the source directory
	ExitRootFailed    = 21 // A configured root schema ended in the failed partition
)

const (
	// SchemaExtension is the file extension schema files must carry to be
	// picked up by the scanner. Matching is case-insensitive.
	SchemaExtension = ".xsd"

	// ConfigFileName is the project configuration file the generate command
	// looks for in the source directory.
	ConfigFileName = "xsdc.yaml"

	// DefaultOutputTemplate places each generated module in its own
	// directory named after the schema. "{name}" expands to the schema's
	// module name.
	DefaultOutputTemplate = "{name}/{name}.go"

	// BarrelFileName is the index module re-exporting every generated
	// module.
	BarrelFileName = "schemas.go"

	// DefaultExpandDepth is the inheritance-chain depth above which the
	// expand-and-embed pass flattens a generated type into a concrete
	// declaration.
	DefaultExpandDepth = 3

	// MaxSchemaFileSize caps how large a single schema file may be before
	// the scanner rejects it. Guards against feeding arbitrary large XML to
	// the parser.
	MaxSchemaFileSize = 16 * 1024 * 1024
)
