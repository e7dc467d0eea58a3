package audio

import "runtime"

// Input selects the ffmpeg capture device.
type Input struct {
	Format string // ffmpeg -f demuxer; empty picks one for the OS
	Device string // empty means the system default
}

func (in Input) format() string {
	if in.Format != "" {
		return in.Format
	}
	switch runtime.GOOS {
	case "darwin":
		return "avfoundation"
	case "windows":
		return "dshow"
	default:
		return "pulse"
	}
}

func (in Input) device() string {
	switch in.format() {
	case "avfoundation":
		if in.Device == "" {
			return ":default"
		}
		return ":" + in.Device
	case "dshow":
		return "audio=" + in.Device
	default:
		if in.Device == "" {
			return "default"
		}
		return in.Device
	}
}

// Args returns the ffmpeg input arguments.
func (in Input) Args() []string {
	return []string{"-f", in.format(), "-i", in.device()}
}

// Describe is a human-readable form for diagnostics.
func (in Input) Describe() string {
	return in.format() + " " + in.device()
}
