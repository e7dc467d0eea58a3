package audio

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// Capture profile: AAC-LC in an MPEG-4 container, 44.1 kHz stereo at 128 kbps.
var captureProfile = []string{
	"-c:a", "aac",
	"-b:a", "128k",
	"-ar", "44100",
	"-ac", "2",
	"-f", "ipod",
}

// Recorder manages ffmpeg-based mic recording. A recording runs as a
// detached ffmpeg process so that a later invocation can stop it by PID.
type Recorder struct {
	FFmpeg string
	Input  Input
	// StopTimeout bounds how long Stop waits for ffmpeg to finalize.
	StopTimeout time.Duration
}

func NewRecorder(ffmpeg string, input Input) *Recorder {
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	return &Recorder{FFmpeg: ffmpeg, Input: input, StopTimeout: 10 * time.Second}
}

func (r *Recorder) CheckFFmpeg() error {
	if _, err := exec.LookPath(r.FFmpeg); err != nil {
		return fmt.Errorf("ffmpeg not found. Install it with your package manager (brew install ffmpeg, apt install ffmpeg)")
	}
	return nil
}

func (r *Recorder) args(outputPath string) []string {
	args := append([]string{"-hide_banner", "-nostdin"}, r.Input.Args()...)
	args = append(args, captureProfile...)
	return append(args, "-y", outputPath)
}

// Start launches ffmpeg recording into outputPath and returns its PID.
func (r *Recorder) Start(outputPath string) (int, error) {
	if err := r.CheckFFmpeg(); err != nil {
		return 0, err
	}

	cmd := exec.Command(r.FFmpeg, r.args(outputPath)...)
	detach(cmd)

	// Log stderr for diagnostics
	logPath := outputPath + ".ffmpeg.log"
	if logFile, err := os.Create(logPath); err == nil {
		cmd.Stderr = logFile
		defer logFile.Close()
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("starting ffmpeg: %w", err)
	}
	pid := cmd.Process.Pid

	// Give ffmpeg a moment to fail on a bad device before reporting success.
	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()
	select {
	case err := <-exited:
		if err == nil {
			err = errors.New("exited immediately")
		}
		return 0, fmt.Errorf("ffmpeg could not open the microphone (see %s): %w", logPath, err)
	case <-time.After(300 * time.Millisecond):
	}
	return pid, nil
}

// Stop interrupts the ffmpeg process so it finalizes the file, and waits for
// it to exit. A process that is already gone is not an error.
func (r *Recorder) Stop(pid int) error {
	if pid <= 0 || !alive(pid) {
		return nil
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return nil
	}
	if err := interrupt(proc); err != nil {
		return fmt.Errorf("signalling ffmpeg: %w", err)
	}

	deadline := time.Now().Add(r.StopTimeout)
	for time.Now().Before(deadline) {
		if !alive(pid) {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	_ = proc.Kill()
	return fmt.Errorf("ffmpeg did not stop within %s, killed", r.StopTimeout)
}
