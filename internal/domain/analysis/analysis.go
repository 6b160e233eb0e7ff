package analysis

import (
	"sort"
)

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

type InternshipStatus string

const (
	StatusEligible InternshipStatus = "Eligible"
	StatusLocked   InternshipStatus = "Locked"
)

type Breakdown struct {
	CoreSkills int `json:"core_skills"`
	Tools      int `json:"tools"`
	Projects   int `json:"projects"`
}

type MissingSkill struct {
	Name             string   `json:"name"`
	Weight           float64  `json:"weight"`
	Priority         Priority `json:"priority"`
	ImpactPercentage float64  `json:"impact_percentage"`
}

type Checkpoint struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Skill            string   `json:"skill"`
	Priority         Priority `json:"priority"`
	ImpactPercentage int      `json:"impact_percentage"`
	EstimatedDays    int      `json:"estimated_days"`
}

type Phase struct {
	Phase       string       `json:"phase"`
	DaysRange   string       `json:"days_range"`
	Checkpoints []Checkpoint `json:"checkpoints"`
}

type Internship struct {
	Title               string           `json:"title"`
	Tier                string           `json:"tier"`
	Status              InternshipStatus `json:"status"`
	MissingRequirements []string         `json:"missing_requirements"`
}

// AnalysisResult is the canonical, display-ready assessment. It is never
// mutated after Normalize returns it.
type AnalysisResult struct {
	TargetRole     string         `json:"target_role"`
	ReadinessScore int            `json:"readiness_score"`
	Breakdown      Breakdown      `json:"breakdown"`
	MatchedSkills  []string       `json:"matched_skills"`
	MissingSkills  []MissingSkill `json:"missing_skills"`
	Roadmap        []Phase        `json:"roadmap"`
	Internships    []Internship   `json:"internships"`
}

// Checkpoint finds a roadmap checkpoint by id.
func (r *AnalysisResult) Checkpoint(id string) (Checkpoint, bool) {
	for _, phase := range r.Roadmap {
		for _, cp := range phase.Checkpoints {
			if cp.ID == id {
				return cp, true
			}
		}
	}
	return Checkpoint{}, false
}

// SortedMissingSkills returns a copy ordered by descending weight. Equal
// weights keep the Analysis Service's order.
func (r *AnalysisResult) SortedMissingSkills() []MissingSkill {
	sorted := make([]MissingSkill, len(r.MissingSkills))
	copy(sorted, r.MissingSkills)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Weight > sorted[j].Weight
	})
	return sorted
}

func (r *AnalysisResult) CheckpointCount() int {
	n := 0
	for _, phase := range r.Roadmap {
		n += len(phase.Checkpoints)
	}
	return n
}
