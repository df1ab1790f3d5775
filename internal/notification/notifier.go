package notification

import (
	"context"
	"fmt"
	"log"
	"time"

	"taskhub/internal/model"
	"taskhub/internal/repository"

	"gopkg.in/gomail.v2"
)

// Notifier emits best-effort notifications. Implementations must never
// return an error to the caller: a failed notification must not block or
// roll back the task mutation that triggered it.
type Notifier interface {
	SendTaskAssignment(ctx context.Context, task *model.Task) bool
}

// MailSender is satisfied by *gomail.Dialer.
type MailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailNotifier struct {
	users  repository.UserRepositoryInterface
	sender MailSender
	from   string
}

var _ Notifier = (*EmailNotifier)(nil)

func NewEmailNotifier(users repository.UserRepositoryInterface, sender MailSender, from string) *EmailNotifier {
	return &EmailNotifier{users: users, sender: sender, from: from}
}

// SendTaskAssignment resolves the assignee and mails them about the task.
// Every failure path logs and reports false; nothing propagates.
func (n *EmailNotifier) SendTaskAssignment(ctx context.Context, task *model.Task) bool {
	user, err := n.users.GetByID(ctx, task.AssignedTo)
	if err != nil {
		log.Printf("⚠️  Notification skipped, failed to resolve assignee: %v", err)
		return false
	}
	if user == nil {
		log.Printf("⚠️  Notification skipped, user %s not found", task.AssignedTo)
		return false
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", user.Email)
	m.SetHeader("Subject", "New Task Assignment")
	m.SetBody("text/html", assignmentBody(user, task))

	if err := n.sender.DialAndSend(m); err != nil {
		log.Printf("⚠️  Notification delivery to %s failed: %v", user.Email, err)
		return false
	}

	log.Printf("📧 Notification sent to %s for task %q", user.Email, task.Title)
	return true
}

func assignmentBody(user *model.User, task *model.Task) string {
	dueDate := "Not specified"
	if task.DueDate != nil {
		dueDate = task.DueDate.Format(time.DateOnly)
	}

	description := ""
	if task.Description != "" {
		description = fmt.Sprintf("<p><strong>Description:</strong> %s</p>", task.Description)
	}

	return fmt.Sprintf(`
		<h2>New Task Assignment</h2>
		<p>Hello %s,</p>
		<p>You have been assigned a new task:</p>
		<div style="margin: 20px; padding: 20px; border: 1px solid #ddd; border-radius: 5px;">
			<h3>%s</h3>
			<p><strong>Priority:</strong> %s</p>
			<p><strong>Status:</strong> %s</p>
			%s
			<p><strong>Due Date:</strong> %s</p>
		</div>
		<p>Please log in to the system to view more details and start working on this task.</p>
		<p>Best regards,<br>TaskHub</p>`,
		user.Name, task.Title, task.Priority, task.Status, description, dueDate,
	)
}
