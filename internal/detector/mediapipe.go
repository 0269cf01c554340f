package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"

	"gocv.io/x/gocv"
)

// MediaPipeDetector implements Detector using a Python MediaPipe subprocess.
// One subprocess is started per model; the process loads the corresponding
// landmarker task file in video running mode and keeps it resident.
type MediaPipeDetector struct {
	model   Model
	config  Config
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdout  *bufio.Reader
	mu      sync.Mutex
	started bool
}

// NewMediaPipeDetector creates a detector for the given model. The Python
// process is started eagerly so that model construction failures surface
// during session initialization rather than on the first frame.
func NewMediaPipeDetector(model Model, config Config) (*MediaPipeDetector, error) {
	d := &MediaPipeDetector{
		model:  model,
		config: config,
	}
	if err := d.start(); err != nil {
		return nil, err
	}
	return d, nil
}

// Model returns the landmark model this detector runs.
func (d *MediaPipeDetector) Model() Model {
	return d.model
}

// DetectForVideo sends the frame to the subprocess and parses the landmark
// sets from its response. The timestamp is forwarded so the model's video
// mode can track subjects across frames.
func (d *MediaPipeDetector) DetectForVideo(frame *gocv.Mat, timestampMs int64) (*Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.started {
		return nil, fmt.Errorf("%s detector is closed", d.model)
	}

	// Encode frame as JPEG
	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()

	// Wire format: timestamp (8 bytes big-endian) + length (4 bytes) + JPEG
	header := make([]byte, 12)
	binary.BigEndian.PutUint64(header[:8], uint64(timestampMs))
	binary.BigEndian.PutUint32(header[8:], uint32(len(data)))

	if _, err := d.stdin.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	if _, err := d.stdin.Write(data); err != nil {
		return nil, fmt.Errorf("write frame: %w", err)
	}

	// Read JSON response, one line per frame
	line, err := d.stdout.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var response struct {
		Subjects []jsonSubject `json:"subjects"`
	}
	if err := json.Unmarshal([]byte(line), &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	result := &Result{
		Model:       d.model,
		Sets:        make([]LandmarkSet, 0, len(response.Subjects)),
		TimestampMs: timestampMs,
	}
	for _, s := range response.Subjects {
		result.Sets = append(result.Sets, s.toLandmarkSet())
	}

	return result, nil
}

// Close shuts down the Python process.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.started {
		return nil
	}

	if d.stdin != nil {
		d.stdin.Close()
	}

	err := d.cmd.Wait()
	d.started = false
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil

	return err
}

func (d *MediaPipeDetector) start() error {
	scriptPath := findLandmarkerScript()
	if scriptPath == "" {
		return fmt.Errorf("landmarker_service.py not found")
	}

	// Use virtual environment Python if available
	pythonPath := findVenvPython()
	if pythonPath == "" {
		pythonPath = "python3"
	}

	d.cmd = exec.Command(pythonPath, scriptPath,
		"--model", string(d.model),
		"--max-subjects", strconv.Itoa(d.config.MaxSubjects),
		"--min-detection-confidence", formatConf(d.config.MinDetectionConfidence),
		"--min-presence-confidence", formatConf(d.config.MinPresenceConfidence),
		"--min-tracking-confidence", formatConf(d.config.MinTrackingConfidence),
	)

	stdin, err := d.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := d.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	// Capture stderr for debugging
	d.cmd.Stderr = os.Stderr

	if err := d.cmd.Start(); err != nil {
		return fmt.Errorf("start %s landmarker service: %w", d.model, err)
	}

	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	d.started = true

	return nil
}

func formatConf(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func findLandmarkerScript() string {
	// Get executable directory
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		"scripts/landmarker_service.py",
		"../scripts/landmarker_service.py",
		filepath.Join(execDir, "scripts/landmarker_service.py"),
		filepath.Join(os.Getenv("HOME"), ".mudra/scripts/landmarker_service.py"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// findVenvPython looks for a Python interpreter in a virtual environment.
// It checks for venv/bin/python relative to the project directory.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".mudra/venv/bin/python"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// jsonSubject represents one detected subject in the service response.
type jsonSubject struct {
	Points     []jsonPoint `json:"points"`
	Handedness string      `json:"handedness,omitempty"`
	Score      float64     `json:"score"`
}

type jsonPoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility,omitempty"`
}

func (s jsonSubject) toLandmarkSet() LandmarkSet {
	set := LandmarkSet{
		Points:     make([]Landmark, len(s.Points)),
		Handedness: s.Handedness,
		Score:      s.Score,
	}
	for i, p := range s.Points {
		set.Points[i] = Landmark{X: p.X, Y: p.Y, Z: p.Z, Visibility: p.Visibility}
	}
	return set
}
