package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RawAnalysis is the Analysis Service response. Every field is optional.
type RawAnalysis struct {
	Readiness       float64
	ExtractedSkills []string
	Gaps            []RawGap
	Roadmap         RawRoadmap
	Priority        []string
}

type RawGap struct {
	Name     string
	Weight   float64
	GapScore float64
}

// RawTask keeps pointers so a missing field can be told apart from an empty one.
type RawTask struct {
	Task  *string `json:"task"`
	Skill *string `json:"skill"`
}

type RawRoadmap struct {
	Week1 []RawTask `json:"week1"`
	Week2 []RawTask `json:"week2"`
	Week3 []RawTask `json:"week3"`
	Week4 []RawTask `json:"week4"`
}

func (r RawRoadmap) week(n int) []RawTask {
	switch n {
	case 1:
		return r.Week1
	case 2:
		return r.Week2
	case 3:
		return r.Week3
	case 4:
		return r.Week4
	}
	return nil
}

type rawGapInfo struct {
	Weight   float64 `json:"weight"`
	GapScore float64 `json:"gap_score"`
}

// UnmarshalJSON decodes the service payload. extracted_skills and gaps are
// objects whose key order is meaningful, so they are walked token by token.
func (r *RawAnalysis) UnmarshalJSON(data []byte) error {
	var aux struct {
		Readiness       *float64        `json:"readiness"`
		ExtractedSkills json.RawMessage `json:"extracted_skills"`
		Gaps            json.RawMessage `json:"gaps"`
		Roadmap         *RawRoadmap     `json:"roadmap"`
		Priority        []string        `json:"priority"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	out := RawAnalysis{Priority: aux.Priority}
	if aux.Readiness != nil {
		out.Readiness = *aux.Readiness
	}
	if aux.Roadmap != nil {
		out.Roadmap = *aux.Roadmap
	}

	seenSkill := map[string]bool{}
	err := forEachEntry(aux.ExtractedSkills, func(key string, _ json.RawMessage) error {
		if !seenSkill[key] {
			seenSkill[key] = true
			out.ExtractedSkills = append(out.ExtractedSkills, key)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("extracted_skills: %w", err)
	}

	// A repeated key keeps its first position and its last value.
	gapIndex := map[string]int{}
	err = forEachEntry(aux.Gaps, func(key string, value json.RawMessage) error {
		var info rawGapInfo
		if !isNull(value) {
			if err := json.Unmarshal(value, &info); err != nil {
				return fmt.Errorf("gap %q: %w", key, err)
			}
		}
		gap := RawGap{Name: key, Weight: info.Weight, GapScore: info.GapScore}
		if i, ok := gapIndex[key]; ok {
			out.Gaps[i] = gap
			return nil
		}
		gapIndex[key] = len(out.Gaps)
		out.Gaps = append(out.Gaps, gap)
		return nil
	})
	if err != nil {
		return fmt.Errorf("gaps: %w", err)
	}

	*r = out
	return nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func forEachEntry(raw json.RawMessage, fn func(key string, value json.RawMessage) error) error {
	if isNull(raw) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return err
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}

	_, err = dec.Token()
	return err
}
