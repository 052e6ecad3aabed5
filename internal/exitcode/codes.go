package exitcode

// Exit codes for the command-line tools.
// Batch jobs can use these to decide whether a rerun can help.
const (
	// Success - completed successfully
	Success = 0

	// ConfigError - bad flags or environment
	// Don't retry: fix the invocation first
	ConfigError = 1

	// ReadError - input file missing or not NetCDF
	ReadError = 2

	// DataError - file is NetCDF but not a valid WFMD grid (metadata or shape)
	// Don't retry: investigate the file
	DataError = 3

	// OutputError - failed to write results
	OutputError = 4

	// ApplicationError - anything else
	ApplicationError = 5
)
