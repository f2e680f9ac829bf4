package clinic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ParseList splits a comma separated list, dropping blank items. An empty
// input yields nil rather than a single blank entry.
func ParseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseVitalSigns reads "Name:reading, Name:reading" input. Only the first
// colon separates name from reading, so "Blood Pressure:120/80 mmHg" parses.
func ParseVitalSigns(raw string) (VitalSigns, error) {
	vitals := make(VitalSigns)
	for _, item := range ParseList(raw) {
		name, reading, ok := strings.Cut(item, ":")
		if !ok {
			return nil, fmt.Errorf("%w: vital sign %q is not in name:reading form", ErrValidation, item)
		}
		if err := vitals.Set(name, reading); err != nil {
			return nil, err
		}
	}
	return vitals, nil
}

// TextList decodes from either a JSON array or a comma separated string.
type TextList []string

func (l *TextList) UnmarshalJSON(data []byte) error {
	if isJSONString(data) {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*l = ParseList(raw)
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*l = items
	return nil
}

// VitalReadings decodes from either a JSON object or "Name:reading, ..." text.
type VitalReadings map[string]string

func (r *VitalReadings) UnmarshalJSON(data []byte) error {
	if isJSONString(data) {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		vitals, err := ParseVitalSigns(raw)
		if err != nil {
			return err
		}
		*r = VitalReadings(vitals)
		return nil
	}
	var readings map[string]string
	if err := json.Unmarshal(data, &readings); err != nil {
		return err
	}
	*r = readings
	return nil
}

func isJSONString(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '"'
}
