package commands

// Version is reported by the version query and the CLI.
const Version = "2.0"

// CommandResponse represents a standardized response format for all commands
type CommandResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) *CommandResponse {
	return &CommandResponse{
		Status: "ok",
		Data:   data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(err error) *CommandResponse {
	return &CommandResponse{
		Status: "error",
		Error:  err.Error(),
	}
}

type VersionResponse struct {
	Version string `json:"version"`
	// Daemon is the version reported by a running daemon, when one answered.
	Daemon string `json:"daemon,omitempty"`
}

// VersionCommand returns the local version, plus the daemon's when addr is
// set and reachable.
func VersionCommand(addr string) *CommandResponse {
	resp := VersionResponse{Version: Version}
	if addr != "" {
		if remote, err := remoteVersion(addr); err == nil {
			resp.Daemon = remote
		}
	}
	return NewSuccessResponse(resp)
}
