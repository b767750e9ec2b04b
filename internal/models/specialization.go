package models

// ProgressPhase tags which band of the global percentage the learner is in.
// Pillar completion maps to 0-50, specialization completion to 50-100; the
// boundary (all pillars done, no track chosen) is exactly 50.
type ProgressPhase string

const (
	PhasePillars        ProgressPhase = "PILLARS"
	PhaseBoundary       ProgressPhase = "BOUNDARY"
	PhaseSpecialization ProgressPhase = "SPECIALIZATION"
)

// GlobalProgress folds the linear pillar chain and the chosen specialization
// into one non-regressing percentage.
type GlobalProgress struct {
	Phase            ProgressPhase `json:"phase"`
	Percent          int           `json:"percent"`
	CompletedPillars int           `json:"completed_pillars"`
	Specialization   *string       `json:"specialization,omitempty"`
}

// SpecializationProgress is the per-track completion summary.
type SpecializationProgress struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	ModulesTotal     int     `json:"modules_total"`
	ModulesCompleted int     `json:"modules_completed"`
	Complete         bool    `json:"complete"`
	Chosen           bool    `json:"chosen"`
	Ratio            float64 `json:"ratio"`
}
