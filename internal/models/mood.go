package models

import (
	"encoding/json"
	"strings"

	"gorm.io/datatypes"
)

// Mood is the versioned shape every mood column normalizes to. Historical rows
// hold a bare string, a bare array, or English value names; NormalizeMood
// migrates all of them at read time, and writes only ever produce version 1.
type Mood struct {
	Version int      `json:"version"`
	Values  []string `json:"values"`
}

const MoodVersion = 1

// Legacy English values mapped to their current French forms.
var legacyMoodValues = map[string]string{
	"happy":   "joyeux",
	"calm":    "calme",
	"sad":     "triste",
	"tired":   "fatigue",
	"angry":   "fache",
	"playful": "joueur",
	"fussy":   "grognon",
}

func canonMoodValue(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return ""
	}
	if fr, ok := legacyMoodValues[v]; ok {
		return fr
	}
	return v
}

// NormalizeMood migrates any historical mood shape to the versioned form.
// Unparseable input yields an empty v1 value rather than an error: a corrupt
// mood cell must not block reading the rest of the report.
func NormalizeMood(raw datatypes.JSON) Mood {
	out := Mood{Version: MoodVersion}
	if len(raw) == 0 {
		return out
	}

	var versioned Mood
	if err := json.Unmarshal(raw, &versioned); err == nil && versioned.Version >= 1 {
		for _, v := range versioned.Values {
			if c := canonMoodValue(v); c != "" {
				out.Values = append(out.Values, c)
			}
		}
		return out
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if c := canonMoodValue(single); c != "" {
			out.Values = append(out.Values, c)
		}
		return out
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, v := range list {
			if c := canonMoodValue(v); c != "" {
				out.Values = append(out.Values, c)
			}
		}
		return out
	}

	return out
}

// JSON renders the mood for storage.
func (m Mood) JSON() datatypes.JSON {
	if m.Version == 0 {
		m.Version = MoodVersion
	}
	if m.Values == nil {
		m.Values = []string{}
	}
	b, _ := json.Marshal(m)
	return datatypes.JSON(b)
}

// MoodFromValues builds a current-version mood from raw values.
func MoodFromValues(values []string) Mood {
	m := Mood{Version: MoodVersion}
	for _, v := range values {
		if c := canonMoodValue(v); c != "" {
			m.Values = append(m.Values, c)
		}
	}
	return m
}
