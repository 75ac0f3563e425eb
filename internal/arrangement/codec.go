package arrangement

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	fieldSeparator = ","
	// escapedComma replaces commas inside display names. A name that already
	// contains a backtick reads back with a comma.
	escapedComma = "`"
	fieldCount   = 6
)

// ErrMalformedConfig is matched by every parse failure of the arrangement file.
var ErrMalformedConfig = errors.New("malformed arrangement config")

// MalformedConfigError describes the offending line of the arrangement file.
type MalformedConfigError struct {
	Line   int
	Text   string
	Reason string
}

func (e *MalformedConfigError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
}

func (e *MalformedConfigError) Unwrap() error {
	return ErrMalformedConfig
}

// Serialize renders one arrangement as one line per monitor
// (displayName,width,height,posX,posY,rotation) followed by a blank
// separator line.
func Serialize(a Arrangement) []byte {
	var buf bytes.Buffer
	for _, m := range a {
		buf.WriteString(formatLine(m))
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	return buf.Bytes()
}

func formatLine(m Monitor) string {
	name := strings.ReplaceAll(m.DisplayName, fieldSeparator, escapedComma)
	return strings.Join([]string{
		name,
		strconv.Itoa(m.Width),
		strconv.Itoa(m.Height),
		strconv.Itoa(m.Position.X),
		strconv.Itoa(m.Position.Y),
		strconv.Itoa(int(m.Rotation)),
	}, fieldSeparator)
}

// ParseAll reads every arrangement from r. Blocks are separated by blank
// lines; empty blocks are dropped. Any malformed line fails the whole parse.
//
// The result lists arrangements in reverse file order, so the most recently
// appended arrangement comes first. Monitors keep their file order.
func ParseAll(r io.Reader) ([]Arrangement, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		blocks  []Arrangement
		current Arrangement
		lineNo  int
	)
	flush := func() {
		if len(current) > 0 {
			blocks = append(blocks, current)
		}
		current = nil
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		m, err := parseLine(line)
		if err != nil {
			err.Line = lineNo
			return nil, err
		}
		current = append(current, m)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read arrangements: %w", err)
	}
	flush()

	for i, j := 0, len(blocks)-1; i < j; i, j = i+1, j-1 {
		blocks[i], blocks[j] = blocks[j], blocks[i]
	}
	return blocks, nil
}

func parseLine(line string) (Monitor, *MalformedConfigError) {
	fields := strings.Split(line, fieldSeparator)
	if len(fields) != fieldCount {
		return Monitor{}, &MalformedConfigError{
			Text:   line,
			Reason: fmt.Sprintf("expected %d comma-separated fields, got %d", fieldCount, len(fields)),
		}
	}

	var nums [fieldCount - 1]int
	for i, raw := range fields[1:] {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return Monitor{}, &MalformedConfigError{
				Text:   line,
				Reason: fmt.Sprintf("field %d is not an integer", i+2),
			}
		}
		nums[i] = n
	}

	m := Monitor{
		DisplayName: strings.ReplaceAll(fields[0], escapedComma, fieldSeparator),
		Geometry: Geometry{
			Width:    nums[0],
			Height:   nums[1],
			Position: Point{X: nums[2], Y: nums[3]},
			Rotation: Rotation(nums[4]),
		},
	}
	switch {
	case m.DisplayName == "":
		return Monitor{}, &MalformedConfigError{Text: line, Reason: "display name is empty"}
	case m.Width <= 0 || m.Height <= 0:
		return Monitor{}, &MalformedConfigError{Text: line, Reason: "width and height must be positive"}
	case !m.Rotation.Valid():
		return Monitor{}, &MalformedConfigError{Text: line, Reason: "rotation must be 0, 1, 2 or 3"}
	}
	return m, nil
}
