package cron

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/campus-records/model"
)

// idCardFile matches the names written by the ID card service
var idCardFile = regexp.MustCompile(`^id_card_\d+\.pdf$`)

// PurgeIDCards deletes generated ID cards older than the retention window.
// Cards are regenerated on every download, so removing them loses nothing.
func (m *CronManager) PurgeIDCards() (string, error) {
	entries, err := os.ReadDir(m.config.IDCardDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "ID card directory does not exist yet", nil
		}
		return "", fmt.Errorf("failed to read ID card directory: %w", err)
	}

	cutoff := m.now().Add(-m.config.IDCardRetention)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !idCardFile.MatchString(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			log.Warnf("[CRON] Failed to stat %s: %v", entry.Name(), err)
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(m.config.IDCardDir, entry.Name())); err != nil && !os.IsNotExist(err) {
			log.Warnf("[CRON] Failed to remove %s: %v", entry.Name(), err)
			continue
		}
		removed++
	}

	return fmt.Sprintf("Removed %d expired ID cards", removed), nil
}

// ReportRecordCounts logs how many institutes, courses and students exist
func (m *CronManager) ReportRecordCounts() (string, error) {
	var institutes, courses, students int64
	if err := m.db.Model(&model.Institute{}).Count(&institutes).Error; err != nil {
		return "", fmt.Errorf("failed to count institutes: %w", err)
	}
	if err := m.db.Model(&model.Course{}).Count(&courses).Error; err != nil {
		return "", fmt.Errorf("failed to count courses: %w", err)
	}
	if err := m.db.Model(&model.Student{}).Count(&students).Error; err != nil {
		return "", fmt.Errorf("failed to count students: %w", err)
	}

	return fmt.Sprintf("%d institutes, %d courses, %d students", institutes, courses, students), nil
}

// CleanupOldData removes cron job logs past the log retention window
func (m *CronManager) CleanupOldData() (string, error) {
	cutoff := m.now().Add(-m.config.LogRetention)
	result := m.db.Where("created_at < ?", cutoff).Delete(&model.CronJobLog{})
	if result.Error != nil {
		return "", fmt.Errorf("failed to clean cron logs: %w", result.Error)
	}
	return fmt.Sprintf("Cleaned %d old cron logs", result.RowsAffected), nil
}
