package l1stack

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// MetadataFile is a MetadataSource backed by an Andor-style metadata text
// file. The exporter writes one line per frame; the last whitespace
// separated field on each data line is the acquisition timestamp in
// seconds. Header lines, blank lines and comments are skipped.
type MetadataFile struct {
	path string
}

// NewMetadataFile creates a MetadataSource reading from path. The file is
// not opened until Timestamps is called.
func NewMetadataFile(path string) *MetadataFile {
	return &MetadataFile{path: path}
}

// Timestamps parses the metadata file into a timestamp series. The series
// must be non-decreasing; a decreasing pair indicates a corrupt or
// mis-ordered export and fails here rather than surfacing as a negative
// time step downstream. Exactly-equal consecutive timestamps are allowed
// through: the kinematics stage reports those as zero time steps with the
// offending index attached.
func (m *MetadataFile) Timestamps() ([]float64, error) {
	fh, err := os.Open(m.path)
	if err != nil {
		return nil, fmt.Errorf("metadata: %w", err)
	}
	defer fh.Close()

	var timestamps []float64
	scanner := bufio.NewScanner(fh)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		ts, err := strconv.ParseFloat(fields[len(fields)-1], 64)
		if err != nil {
			// Header or unit line; skip rather than fail. Real data lines
			// always end in a numeric field.
			continue
		}
		timestamps = append(timestamps, ts)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("metadata: read %s: %w", m.path, err)
	}
	if len(timestamps) == 0 {
		return nil, fmt.Errorf("metadata: no timestamps found in %s", m.path)
	}
	for i := 1; i < len(timestamps); i++ {
		if timestamps[i] < timestamps[i-1] {
			return nil, fmt.Errorf("metadata: timestamps decrease at sample %d (%f -> %f), line order corrupt",
				i, timestamps[i-1], timestamps[i])
		}
	}
	return timestamps, nil
}
