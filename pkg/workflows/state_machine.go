package workflows

import "sort"

// Workflow actions.
const (
	ActionSubmit          = "SUBMIT"
	ActionApprove         = "APPROVE"
	ActionReject          = "REJECT"
	ActionRevisionRequest = "REVISION_REQUEST"
	ActionStartReview     = "START_REVIEW"
)

// Document statuses.
const (
	StatusDraft             = "DRAFT"
	StatusPending           = "PENDING"
	StatusInReview          = "IN_REVIEW"
	StatusRevisionRequested = "REVISION_REQUESTED"
	StatusApproved          = "APPROVED"
	StatusRejected          = "REJECTED"
	StatusCompleted         = "COMPLETED"
)

// StateMachine enforces document status transitions
type StateMachine struct {
	transitions map[string]map[string]string // from status -> action -> to status
}

// NewDocumentStateMachine creates the state machine for the document
// approval workflow. APPROVED, REJECTED and COMPLETED are terminal.
func NewDocumentStateMachine() *StateMachine {
	return &StateMachine{
		transitions: map[string]map[string]string{
			StatusDraft: {
				ActionSubmit: StatusPending,
			},
			StatusRevisionRequested: {
				ActionSubmit: StatusPending,
			},
			StatusPending: {
				ActionStartReview:     StatusInReview,
				ActionApprove:         StatusApproved,
				ActionReject:          StatusRejected,
				ActionRevisionRequest: StatusRevisionRequested,
			},
			StatusInReview: {
				ActionApprove:         StatusApproved,
				ActionReject:          StatusRejected,
				ActionRevisionRequest: StatusRevisionRequested,
			},
			StatusApproved:  {},
			StatusRejected:  {},
			StatusCompleted: {},
		},
	}
}

// CanApply checks if an action is allowed from the given status
func (sm *StateMachine) CanApply(from, action string) bool {
	_, ok := sm.Next(from, action)
	return ok
}

// Next returns the status an action leads to from the given status
func (sm *StateMachine) Next(from, action string) (string, bool) {
	actions, exists := sm.transitions[from]
	if !exists {
		return "", false
	}
	to, ok := actions[action]
	return to, ok
}

// AllowedActions returns the actions available from a given status
func (sm *StateMachine) AllowedActions(from string) []string {
	actions, exists := sm.transitions[from]
	if !exists {
		return []string{}
	}
	names := make([]string, 0, len(actions))
	for action := range actions {
		names = append(names, action)
	}
	sort.Strings(names)
	return names
}

// IsTerminal reports whether a status has no outgoing transitions
func (sm *StateMachine) IsTerminal(status string) bool {
	actions, exists := sm.transitions[status]
	return exists && len(actions) == 0
}
