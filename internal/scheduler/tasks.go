package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskEvaluateLead = "matching.evaluate_lead"

const TaskEvaluateProperty = "matching.evaluate_property"

type EvaluateLeadPayload struct {
	LeadID string `json:"leadId"`
}

type EvaluatePropertyPayload struct {
	PropertyID string `json:"propertyId"`
}

func NewEvaluateLeadTask(payload EvaluateLeadPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskEvaluateLead, data), nil
}

func ParseEvaluateLeadPayload(task *asynq.Task) (EvaluateLeadPayload, error) {
	var payload EvaluateLeadPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return EvaluateLeadPayload{}, err
	}
	return payload, nil
}

func NewEvaluatePropertyTask(payload EvaluatePropertyPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskEvaluateProperty, data), nil
}

func ParseEvaluatePropertyPayload(task *asynq.Task) (EvaluatePropertyPayload, error) {
	var payload EvaluatePropertyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return EvaluatePropertyPayload{}, err
	}
	return payload, nil
}
