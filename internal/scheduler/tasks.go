package scheduler

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	TaskApplicationSubmitted  = "hiring:application.submitted"
	TaskVideoCompleted        = "hiring:video.completed"
	TaskInterviewScored       = "hiring:interview.scored"
	TaskNotificationOutboxDue = "notification:outbox.due"
	TaskWeeklyDigest          = "hiring:digest.weekly"
)

// ApplicantPayload identifies the applicant a pipeline task works on. Tasks
// carry only the id; handlers reload state.
type ApplicantPayload struct {
	ApplicantID string `json:"applicantId"`
}

type NotificationOutboxDuePayload struct {
	OutboxID string `json:"outboxId"`
}

func NewApplicantTask(taskType string, applicantID uuid.UUID) (*asynq.Task, error) {
	switch taskType {
	case TaskApplicationSubmitted, TaskVideoCompleted, TaskInterviewScored:
	default:
		return nil, fmt.Errorf("%s is not an applicant task", taskType)
	}
	data, err := json.Marshal(ApplicantPayload{ApplicantID: applicantID.String()})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, data), nil
}

func ParseApplicantPayload(task *asynq.Task) (uuid.UUID, error) {
	var payload ApplicantPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(payload.ApplicantID)
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

func NewWeeklyDigestTask() *asynq.Task {
	return asynq.NewTask(TaskWeeklyDigest, nil)
}
