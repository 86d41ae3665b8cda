package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/teamboardhq/teamboard/backend/internal/models"
	"github.com/teamboardhq/teamboard/backend/pkg/logger"
	"gorm.io/gorm"
)

// NotificationService sends invitation and deadline emails. SMTP
// settings live in system config so operators can change them without
// a restart. Delivery goes through the mail queue; the engine never
// blocks a request on SMTP.
type NotificationService struct {
	db    *gorm.DB
	queue MailQueue
}

type EmailConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
}

func NewNotificationService(db *gorm.DB, queue MailQueue) *NotificationService {
	return &NotificationService{db: db, queue: queue}
}

func (s *NotificationService) GetConfig() *EmailConfig {
	config := &EmailConfig{}

	var configs []models.SystemConfig
	s.db.Where("`group` = ?", "email").Find(&configs)

	for _, c := range configs {
		switch c.Key {
		case "email_enabled":
			config.Enabled = c.Value == "true"
		case "email_host":
			config.Host = c.Value
		case "email_port":
			if port, err := strconv.Atoi(c.Value); err == nil {
				config.Port = port
			}
		case "email_username":
			config.Username = c.Value
		case "email_password":
			config.Password = c.Value
		case "email_from":
			config.From = c.Value
		case "email_use_tls":
			config.UseTLS = c.Value == "true"
		}
	}

	if config.Port == 0 {
		config.Port = 587
	}

	return config
}

// QueueInvitationEmail enqueues a notification for a freshly created
// invitation. Failures are logged, never surfaced: mail is best-effort
// and must not fail the invite operation.
func (s *NotificationService) QueueInvitationEmail(invitation *models.Invitation, project *models.Project, inviter *Caller) {
	if s.queue == nil {
		return
	}

	task := &InvitationMailTask{
		InvitationID: invitation.ID,
		ProjectID:    project.ID,
		ProjectName:  project.Name,
		Email:        invitation.Email,
		InviterName:  inviter.Name,
	}
	if err := s.queue.Enqueue(task); err != nil {
		logger.Warnf("[Notification] Failed to enqueue invitation mail for %s: %v", invitation.Email, err)
	}
}

// DeliverInvitationMail sends the invitation email. Used as the queue
// processor for both sync and async modes.
func (s *NotificationService) DeliverInvitationMail(ctx context.Context, task *InvitationMailTask) error {
	config := s.GetConfig()
	if !config.Enabled || config.Host == "" {
		return nil
	}

	baseURL := NewSystemConfigService(s.db).GetWithDefault("app_base_url", "http://localhost:8080")
	link := fmt.Sprintf("%s/invitations/%s", strings.TrimSuffix(baseURL, "/"), task.InvitationID)

	subject := fmt.Sprintf("[Teamboard] You've been invited to %s", task.ProjectName)
	body := s.buildInvitationBody(task, link)

	return s.sendEmail(config, []string{task.Email}, subject, body)
}

// SendDeadlineReminder mails every member of a project approaching its
// deadline.
func (s *NotificationService) SendDeadlineReminder(project *models.Project, recipients []string) error {
	config := s.GetConfig()
	if !config.Enabled || config.Host == "" {
		return nil
	}
	if len(recipients) == 0 {
		return nil
	}

	deadline := ""
	if project.Deadline != nil {
		deadline = project.Deadline.Format("2006-01-02")
	}

	subject := fmt.Sprintf("[Teamboard] Deadline approaching: %s", project.Name)

	var sb strings.Builder
	sb.WriteString("<html><body style=\"font-family: Arial, sans-serif;\">")
	sb.WriteString("<h2>Project deadline reminder</h2>")
	sb.WriteString(fmt.Sprintf("<p>The project <b>%s</b> reaches its deadline on <b>%s</b>.</p>", project.Name, deadline))
	sb.WriteString("<hr><p style=\"color: #888; font-size: 12px;\">Powered by Teamboard</p>")
	sb.WriteString("</body></html>")

	return s.sendEmail(config, recipients, subject, sb.String())
}

func (s *NotificationService) buildInvitationBody(task *InvitationMailTask, link string) string {
	var sb strings.Builder

	sb.WriteString("<html><body style=\"font-family: Arial, sans-serif;\">")
	sb.WriteString("<h2>Project invitation</h2>")
	sb.WriteString(fmt.Sprintf("<p><b>%s</b> invited you to join the project <b>%s</b>.</p>", task.InviterName, task.ProjectName))
	sb.WriteString(fmt.Sprintf("<p><a href=\"%s\">View the invitation</a> to accept or decline.</p>", link))
	sb.WriteString("<hr><p style=\"color: #888; font-size: 12px;\">Powered by Teamboard</p>")
	sb.WriteString("</body></html>")

	return sb.String()
}

func (s *NotificationService) sendEmail(config *EmailConfig, to []string, subject, body string) error {
	from := config.From
	if from == "" {
		from = config.Username
	}

	headers := make(map[string]string)
	headers["From"] = from
	headers["To"] = strings.Join(to, ",")
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var message strings.Builder
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(body)

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)

	var auth smtp.Auth
	if config.Username != "" && config.Password != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	var err error
	if config.UseTLS {
		err = s.sendEmailTLS(config, addr, auth, from, to, message.String())
	} else {
		err = smtp.SendMail(addr, auth, from, to, []byte(message.String()))
	}

	if err != nil {
		logger.Warnf("[Email] Failed to send email: %v", err)
		return err
	}

	logger.Infof("[Email] Sent notification to %v", to)
	return nil
}

func (s *NotificationService) sendEmailTLS(config *EmailConfig, addr string, auth smtp.Auth, from string, to []string, message string) error {
	tlsConfig := &tls.Config{
		ServerName: config.Host,
	}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, config.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}

	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(message)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return client.Quit()
}
