package services

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/teamboardhq/teamboard/backend/internal/models"
	"github.com/teamboardhq/teamboard/backend/pkg/logger"
	"gorm.io/gorm"
)

// ReminderService mails project members when a project deadline is
// approaching. Purely additive: the engine itself enforces no deadlines
// and no invitation expiry.
type ReminderService struct {
	db            *gorm.DB
	notifier      *NotificationService
	cronScheduler *cron.Cron
	entryID       cron.EntryID
}

func NewReminderService(db *gorm.DB, notifier *NotificationService) *ReminderService {
	return &ReminderService{db: db, notifier: notifier}
}

// StartScheduler checks deadlines every morning at 08:00 server time.
func (s *ReminderService) StartScheduler() {
	s.cronScheduler = cron.New()

	entryID, err := s.cronScheduler.AddFunc("0 8 * * *", func() {
		s.SendDueReminders()
	})
	if err != nil {
		logger.Errorf("[Reminder] Failed to schedule deadline reminders: %v", err)
		return
	}
	s.entryID = entryID
	s.cronScheduler.Start()
	logger.Infof("[Reminder] Deadline reminder scheduler started")
}

func (s *ReminderService) StopScheduler() {
	if s.cronScheduler != nil {
		s.cronScheduler.Remove(s.entryID)
		s.cronScheduler.Stop()
	}
}

// SendDueReminders mails members of every non-archived project whose
// deadline falls within the configured reminder window.
func (s *ReminderService) SendDueReminders() {
	days := NewSystemConfigService(s.db).GetInt("deadline_reminder_days", 1)
	if days <= 0 {
		return
	}

	now := time.Now()
	cutoff := now.AddDate(0, 0, days)

	var projects []models.Project
	err := s.db.
		Where("deadline IS NOT NULL AND deadline BETWEEN ? AND ?", now, cutoff).
		Where("status NOT IN ?", []string{models.ProjectStatusCompleted, models.ProjectStatusArchived}).
		Find(&projects).Error
	if err != nil {
		logger.Errorf("[Reminder] Failed to query projects: %v", err)
		return
	}

	for i := range projects {
		project := &projects[i]

		var recipients []string
		if err := s.db.Model(&models.ProjectMember{}).
			Where("project_id = ? AND member_email != ''", project.ID).
			Pluck("member_email", &recipients).Error; err != nil {
			logger.Errorf("[Reminder] Failed to list members of project %d: %v", project.ID, err)
			continue
		}

		if err := s.notifier.SendDeadlineReminder(project, recipients); err != nil {
			logger.Warnf("[Reminder] Failed to mail project %d members: %v", project.ID, err)
		}
	}
}
