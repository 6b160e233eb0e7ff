package analysis

import (
	"fmt"
	"math"
	"strings"
)

// MalformedTaskError reports a roadmap task that lacks a required field.
type MalformedTaskError struct {
	Week  string
	Index int
	Field string
}

func (e *MalformedTaskError) Error() string {
	return fmt.Sprintf("roadmap %s task %d: missing %q", e.Week, e.Index, e.Field)
}

type phaseRule struct {
	name             string
	daysRange        string
	weeks            []int
	idPrefix         string
	priority         Priority
	impactPercentage int
	estimatedDays    int
}

var phaseRules = []phaseRule{
	{name: "Foundation (Week 1-2)", daysRange: "1-14", weeks: []int{1, 2}, idPrefix: "cp_", priority: PriorityHigh, impactPercentage: 5, estimatedDays: 3},
	{name: "Intermediate (Week 3)", daysRange: "15-21", weeks: []int{3}, idPrefix: "cp_w3_", priority: PriorityMedium, impactPercentage: 7, estimatedDays: 7},
	{name: "Review (Week 4)", daysRange: "22-30", weeks: []int{4}, idPrefix: "cp_w4_", priority: PriorityLow, impactPercentage: 3, estimatedDays: 2},
}

type tierRule struct {
	title             string
	tier              string
	alwaysEligible    bool
	minReadiness      float64 // exclusive
	requirementsShown int
}

var tierRules = []tierRule{
	{title: "Senior Software Developer", tier: "Tier 1", minReadiness: 80, requirementsShown: 3},
	{title: "Software Developer", tier: "Tier 2", minReadiness: 50, requirementsShown: 2},
	{title: "Junior Developer", tier: "Tier 3", alwaysEligible: true},
}

// Normalizer turns a RawAnalysis into an AnalysisResult. With ClampScores
// unset it reproduces the legacy scores, which may leave [0,100].
type Normalizer struct {
	ClampScores bool
}

func NewNormalizer(clampScores bool) Normalizer {
	return Normalizer{ClampScores: clampScores}
}

var defaultNormalizer = Normalizer{ClampScores: true}

// Normalize uses the default, clamping normalizer.
func Normalize(raw RawAnalysis, targetRole string) (*AnalysisResult, error) {
	return defaultNormalizer.Normalize(raw, targetRole)
}

func (n Normalizer) Normalize(raw RawAnalysis, targetRole string) (*AnalysisResult, error) {
	roadmap, err := buildRoadmap(raw.Roadmap)
	if err != nil {
		return nil, err
	}

	r := raw.Readiness
	return &AnalysisResult{
		TargetRole:     targetRole,
		ReadinessScore: n.score(r),
		Breakdown: Breakdown{
			CoreSkills: n.score(r + 10),
			Tools:      n.score(r),
			Projects:   n.score(r + 5),
		},
		MatchedSkills: append([]string{}, raw.ExtractedSkills...),
		MissingSkills: buildMissingSkills(raw.Gaps),
		Roadmap:       roadmap,
		Internships:   buildInternships(r, raw.Priority),
	}, nil
}

func (n Normalizer) score(v float64) int {
	s := roundHalfUp(v)
	if n.ClampScores {
		s = clamp(s, 0, 100)
	}
	return s
}

// roundHalfUp rounds .5 towards positive infinity, so -2.5 becomes -2.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func gapPriority(gapScore float64) Priority {
	switch {
	case gapScore > 10:
		return PriorityHigh
	case gapScore > 5:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func buildMissingSkills(gaps []RawGap) []MissingSkill {
	skills := make([]MissingSkill, 0, len(gaps))
	for _, g := range gaps {
		skills = append(skills, MissingSkill{
			Name:             strings.ToUpper(g.Name),
			Weight:           g.Weight,
			Priority:         gapPriority(g.GapScore),
			ImpactPercentage: g.GapScore,
		})
	}
	return skills
}

func buildRoadmap(rm RawRoadmap) ([]Phase, error) {
	phases := make([]Phase, 0, len(phaseRules))
	for _, rule := range phaseRules {
		checkpoints := []Checkpoint{}
		for _, week := range rule.weeks {
			weekName := fmt.Sprintf("week%d", week)
			for i, task := range rm.week(week) {
				if task.Task == nil {
					return nil, &MalformedTaskError{Week: weekName, Index: i, Field: "task"}
				}
				if task.Skill == nil {
					return nil, &MalformedTaskError{Week: weekName, Index: i, Field: "skill"}
				}
				checkpoints = append(checkpoints, Checkpoint{
					ID:               fmt.Sprintf("%s%d", rule.idPrefix, len(checkpoints)),
					Title:            *task.Task,
					Skill:            strings.ToUpper(*task.Skill),
					Priority:         rule.priority,
					ImpactPercentage: rule.impactPercentage,
					EstimatedDays:    rule.estimatedDays,
				})
			}
		}
		phases = append(phases, Phase{
			Phase:       rule.name,
			DaysRange:   rule.daysRange,
			Checkpoints: checkpoints,
		})
	}
	return phases, nil
}

func buildInternships(readiness float64, priority []string) []Internship {
	internships := make([]Internship, 0, len(tierRules))
	for _, rule := range tierRules {
		in := Internship{
			Title:               rule.title,
			Tier:                rule.tier,
			Status:              StatusEligible,
			MissingRequirements: []string{},
		}
		if !rule.alwaysEligible && !(readiness > rule.minReadiness) {
			in.Status = StatusLocked
			in.MissingRequirements = firstN(priority, rule.requirementsShown)
		}
		internships = append(internships, in)
	}
	return internships
}

func firstN(items []string, n int) []string {
	if n > len(items) {
		n = len(items)
	}
	out := make([]string, n)
	copy(out, items[:n])
	return out
}
