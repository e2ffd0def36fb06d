package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskLeadExpirySweep = "leads.expiry.sweep"

const TaskNotificationOutboxDue = "notification.outbox.due"

type LeadExpirySweepPayload struct {
	RequestedAt string `json:"requestedAt"`
}

type NotificationOutboxDuePayload struct {
	Limit int `json:"limit"`
}

func NewLeadExpirySweepTask(payload LeadExpirySweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadExpirySweep, data), nil
}

func ParseLeadExpirySweepPayload(task *asynq.Task) (LeadExpirySweepPayload, error) {
	var payload LeadExpirySweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadExpirySweepPayload{}, err
	}
	return payload, nil
}

func NewNotificationOutboxDueTask(payload NotificationOutboxDuePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationOutboxDue, data), nil
}

func ParseNotificationOutboxDuePayload(task *asynq.Task) (NotificationOutboxDuePayload, error) {
	var payload NotificationOutboxDuePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return NotificationOutboxDuePayload{}, err
	}
	return payload, nil
}
