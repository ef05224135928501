package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskPayrollGenerate is the task type for monthly payroll draft generation.
	TaskPayrollGenerate = "payroll:generate"
	// TaskOverdueScan is the task type for the overdue task reminder scan.
	TaskOverdueScan = "tasks:overdue_scan"
	// TaskLeaveBalanceReset is the task type for the new-year balance rollover.
	TaskLeaveBalanceReset = "leaves:balance_reset"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// HandleSendEmailTask processes TaskTypeSendEmail tasks.
func HandleSendEmailTask(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// Placeholder: integrate with SMTP once the mail relay is provisioned.
	fmt.Printf("[jobs] send email to %s subject=%s\n", payload.To, payload.Subject)
	return nil
}

// PayrollGeneratePayload selects the period to generate. An empty period means
// the current month.
type PayrollGeneratePayload struct {
	Period string `json:"period,omitempty"`
}

// NewPayrollGenerateTask constructs an Asynq task.
func NewPayrollGenerateTask(payload PayrollGeneratePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPayrollGenerate, data), nil
}

// OverdueScanPayload configures the overdue reminder scan.
type OverdueScanPayload struct {
	Limit int `json:"limit,omitempty"`
}

// NewOverdueScanTask constructs an Asynq task.
func NewOverdueScanTask(payload OverdueScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOverdueScan, data), nil
}

// NewLeaveBalanceResetTask constructs an Asynq task. The rollover carries no
// parameters; it always targets the cached balances of the year that ended.
func NewLeaveBalanceResetTask() (*asynq.Task, error) {
	return asynq.NewTask(TaskLeaveBalanceReset, nil), nil
}
