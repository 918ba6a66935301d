package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskLeadFollowUp checks whether a captured lead has made lifecycle
// progress within the follow-up window.
const TaskLeadFollowUp = "leads.followup.check"

type LeadFollowUpPayload struct {
	LeadID string `json:"leadId"`
}

func NewLeadFollowUpTask(payload LeadFollowUpPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadFollowUp, data), nil
}

func ParseLeadFollowUpPayload(task *asynq.Task) (LeadFollowUpPayload, error) {
	var payload LeadFollowUpPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadFollowUpPayload{}, err
	}
	return payload, nil
}
