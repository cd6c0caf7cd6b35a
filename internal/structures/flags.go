package structures

// CliFlags carries the global command line flags shared by every subcommand.
type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}
