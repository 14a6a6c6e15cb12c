package commands

import (
	"os"
	"runtime"
	"strings"

	"github.com/syndtr/gocapability/capability"
	"golang.org/x/sys/unix"

	"github.com/edgewake/trace2wake/input"
	"github.com/edgewake/trace2wake/utils"
)

const (
	uinputPath = "/dev/uinput"
	inputDir   = "/dev/input"
)

type DoctorInfo struct {
	Trace2WakeVersion string          `json:"trace2wake_version"`
	OS                string          `json:"os"`
	OSVersion         string          `json:"os_version"`
	UID               int             `json:"uid"`
	Capabilities      map[string]bool `json:"capabilities,omitempty"`
	UinputWritable    bool            `json:"uinput_writable"`
	InputReadable     bool            `json:"input_readable"`
	TouchDevices      []input.Device  `json:"touch_devices"`
	ConfigPath        string          `json:"config_path,omitempty"`
	ListenAddr        string          `json:"listen_addr,omitempty"`
	ListenAvailable   *bool           `json:"listen_available,omitempty"`
	Problems          []string        `json:"problems,omitempty"`
}

type DoctorRequest struct {
	ConfigPath string
	ListenAddr string
}

var checkedCaps = []capability.Cap{
	capability.CAP_DAC_OVERRIDE,
	capability.CAP_SYS_ADMIN,
}

func getCapabilities() (map[string]bool, error) {
	caps, err := capability.NewPid2(0)
	if err != nil {
		return nil, err
	}
	if err := caps.Load(); err != nil {
		return nil, err
	}

	out := make(map[string]bool, len(checkedCaps))
	for _, c := range checkedCaps {
		out[c.String()] = caps.Get(capability.EFFECTIVE, c)
	}
	return out, nil
}

func canAccess(path string, mode uint32) bool {
	return unix.Access(path, mode) == nil
}

func getOSVersion() string {
	data, err := os.ReadFile("/etc/os-release")
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "PRETTY_NAME=") {
			return strings.Trim(strings.TrimPrefix(line, "PRETTY_NAME="), "\"")
		}
	}
	return ""
}

// DoctorCommand reports whether this host can read touches and inject the
// power key.
func DoctorCommand(req DoctorRequest) *CommandResponse {
	info := DoctorInfo{
		Trace2WakeVersion: Version,
		OS:                runtime.GOOS,
		OSVersion:         getOSVersion(),
		UID:               os.Getuid(),
		UinputWritable:    canAccess(uinputPath, unix.W_OK),
		InputReadable:     canAccess(inputDir, unix.R_OK|unix.X_OK),
		ConfigPath:        req.ConfigPath,
		TouchDevices:      []input.Device{},
	}

	caps, err := getCapabilities()
	if err != nil {
		utils.Verbose("Could not read process capabilities: %v", err)
	} else {
		info.Capabilities = caps
	}

	touch, err := input.FindTouchscreens()
	if err != nil {
		info.Problems = append(info.Problems, err.Error())
	} else if touch != nil {
		info.TouchDevices = touch
	}

	if req.ListenAddr != "" {
		info.ListenAddr = req.ListenAddr
		available := utils.IsAddrAvailable(req.ListenAddr)
		info.ListenAvailable = &available
	}

	info.Problems = append(info.Problems, diagnose(info)...)
	return NewSuccessResponse(info)
}

func diagnose(info DoctorInfo) []string {
	var problems []string
	if !info.UinputWritable {
		problems = append(problems, uinputPath+" is not writable, a virtual power key cannot be created")
	}
	if !info.InputReadable {
		problems = append(problems, inputDir+" is not readable")
	}
	if len(info.TouchDevices) == 0 {
		problems = append(problems, "no touch device found")
	}
	if info.ListenAvailable != nil && !*info.ListenAvailable {
		problems = append(problems, info.ListenAddr+" is in use, a daemon may already be running")
	}
	return problems
}
