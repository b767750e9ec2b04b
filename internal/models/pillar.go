package models

// PillarStatus is always derived from ApprovedPillar and module completion,
// never stored.
type PillarStatus string

const (
	PillarStatusLocked    PillarStatus = "LOCKED"
	PillarStatusUnlocked  PillarStatus = "UNLOCKED"
	PillarStatusCompleted PillarStatus = "COMPLETED"
)

// PillarState is the per-pillar affordance payload rendered by the interface.
type PillarState struct {
	Index            int          `json:"index"`
	Title            string       `json:"title"`
	Status           PillarStatus `json:"status"`
	Viewable         bool         `json:"viewable"`
	ModulesTotal     int          `json:"modules_total"`
	ModulesCompleted int          `json:"modules_completed"`
	ExamStatus       *ExamStatus  `json:"exam_status,omitempty"`
}

// AdvanceAction tells the interface what happens when the learner tries to
// move past a pillar.
type AdvanceAction string

const (
	AdvanceActionProceed         AdvanceAction = "PROCEED"
	AdvanceActionExamRequired    AdvanceAction = "EXAM_REQUIRED"
	AdvanceActionUpgradeRequired AdvanceAction = "UPGRADE_REQUIRED"
)

// AdvanceResult describes the outcome of an advance request.
type AdvanceResult struct {
	Action      AdvanceAction `json:"action"`
	PillarIndex int           `json:"pillar_index"`
	NextPillar  int           `json:"next_pillar,omitempty"`
}
