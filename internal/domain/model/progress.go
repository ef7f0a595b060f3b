package model

// ProgressState is the externally visible progress of one job. It is
// ephemeral: held in process memory (optionally mirrored to a shared store)
// and not persisted long-term.
//
// Percent is monotonic by convention, not enforced; a cache hit
// short-circuits straight to 100. Done is terminal and never reverts.
type ProgressState struct {
	JobID   string `json:"job_id"`
	Percent int    `json:"percent"`
	Step    string `json:"step"`
	Message string `json:"message,omitempty"`
	Done    bool   `json:"done"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
