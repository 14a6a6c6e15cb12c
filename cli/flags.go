package cli

var (
	verbose    bool
	jsonLogs   bool
	configPath string

	// for client commands
	serverAddr string

	// for run command
	runDaemon   bool
	runLogFile  string
	runInput    string
	runListen   string
	runNoServer bool

	// for devices command
	touchOnly bool
)
