package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Score is a point value as delivered by the grade portal. It may arrive as a
// JSON number or as text and is only interpreted by the grading engine.
type Score string

// ScoreOf formats a numeric score.
func ScoreOf(v float64) Score {
	return Score(strconv.FormatFloat(v, 'f', -1, 64))
}

// UnmarshalJSON accepts numbers, strings and null.
func (s *Score) UnmarshalJSON(data []byte) error {
	raw, err := decodeFlexible(data)
	if err != nil {
		return fmt.Errorf("decode score: %w", err)
	}
	*s = Score(raw)
	return nil
}

// MarshalJSON writes numeric scores as JSON numbers and everything else as text.
func (s Score) MarshalJSON() ([]byte, error) {
	return encodeFlexible(string(s))
}

// Mark is a single report-card mark. The empty Mark means the mark was not
// issued; non-numeric marks such as "P" or "EX" are kept verbatim.
type Mark string

// MarkOf formats a numeric report-card mark.
func MarkOf(v float64) Mark {
	return Mark(strconv.FormatFloat(v, 'f', -1, 64))
}

// UnmarshalJSON accepts numbers, strings and null.
func (m *Mark) UnmarshalJSON(data []byte) error {
	raw, err := decodeFlexible(data)
	if err != nil {
		return fmt.Errorf("decode mark: %w", err)
	}
	*m = Mark(raw)
	return nil
}

// MarshalJSON writes numeric marks as JSON numbers, absent marks as null.
func (m Mark) MarshalJSON() ([]byte, error) {
	return encodeFlexible(string(m))
}

func decodeFlexible(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", nil
	}
	if data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return "", err
		}
		return text, nil
	}
	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return "", err
	}
	return number.String(), nil
}

func encodeFlexible(value string) ([]byte, error) {
	if value == "" {
		return []byte("null"), nil
	}
	trimmed := strings.TrimSpace(value)
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && json.Valid([]byte(trimmed)) && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return []byte(trimmed), nil
	}
	return json.Marshal(value)
}

