// File path: internal/transcript/parser.go
package transcript

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Segment is one timed unit of a parsed spoken-content artifact. Segments are
// produced once per artifact and never mutated after load.
type Segment struct {
	Index int     `json:"index"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// ParseSRT parses SubRip subtitle text into an ordered segment list.
//
//	1
//	00:00:00,000 --> 00:00:01,830
//	I'm happy to
//	have you here today.
//
// Cue numbers in the file are advisory; segments are re-indexed sequentially.
func ParseSRT(data []byte) ([]Segment, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty subtitle artifact")
	}
	var segments []Segment
	var start, end float64
	var lines []string
	var sawCue bool

	flush := func() {
		if len(lines) == 0 {
			return
		}
		segments = append(segments, Segment{
			Index: len(segments),
			Start: start,
			End:   end,
			Text:  strings.Join(lines, " "),
		})
		lines = nil
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			flush()
			continue
		}
		if isDigitOnly(line) && len(lines) == 0 {
			continue
		}
		if strings.Contains(line, "-->") {
			flush()
			parts := strings.Split(line, "-->")
			if len(parts) == 2 {
				start = parseTimestamp(parts[0])
				end = parseTimestamp(parts[1])
				sawCue = true
			}
			continue
		}
		lines = append(lines, line)
	}
	flush()

	if !sawCue || len(segments) == 0 {
		return nil, fmt.Errorf("no subtitle cues found")
	}
	return segments, nil
}

// ParseSegmentsJSON decodes a pre-parsed segment artifact, defaulting index
// and time fields defensively when absent.
func ParseSegmentsJSON(data []byte) ([]Segment, error) {
	var records []struct {
		Index *int     `json:"index"`
		Start *float64 `json:"start"`
		End   *float64 `json:"end"`
		Text  string   `json:"text"`
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode segments artifact: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("segments artifact empty")
	}
	segments := make([]Segment, 0, len(records))
	for i, rec := range records {
		seg := Segment{Index: i, Text: rec.Text}
		if rec.Index != nil {
			seg.Index = *rec.Index
		}
		if rec.Start != nil {
			seg.Start = *rec.Start
		}
		if rec.End != nil {
			seg.End = *rec.End
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

// parseTimestamp converts "HH:MM:SS,mmm" (or the dot variant) to seconds.
// Malformed input yields zero rather than an error; cue text still carries
// the searchable content.
func parseTimestamp(raw string) float64 {
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, ",", ".")
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return 0
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0
	}
	return float64(hours)*3600 + float64(minutes)*60 + seconds
}

func isDigitOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
