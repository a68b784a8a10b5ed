package store

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/isdev18/vitrine-do-vendedor/internal/models"
)

// maxLogs caps the audit collection; the oldest entries are evicted.
const maxLogs = 1000

// AddLog appends an audit entry. Audit failures are logged but never fail
// the operation that produced them.
func (s *Store) AddLog(action, userID string, data map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addLogLocked(action, userID, data)
}

func (s *Store) addLogLocked(action, userID string, data map[string]string) {
	logs, err := load[models.LogEntry](s, keyLogs)
	if err != nil {
		s.log.Warn("failed to load audit log", slog.String("action", action), slog.Any("err", err))
		return
	}

	logs = append(logs, models.LogEntry{
		ID:        newID(),
		Action:    action,
		UserID:    userID,
		Data:      data,
		CreatedAt: time.Now().UTC(),
	})
	if len(logs) > maxLogs {
		logs = logs[len(logs)-maxLogs:]
	}

	if err := save(s, keyLogs, logs); err != nil {
		s.log.Warn("failed to append audit log", slog.String("action", action), slog.Any("err", err))
	}
}

// Logs returns audit entries matching the filter, newest first.
func (s *Store) Logs(filter models.LogFilter) ([]models.LogEntry, error) {
	const op = "store.Logs"

	s.mu.Lock()
	defer s.mu.Unlock()

	logs, err := load[models.LogEntry](s, keyLogs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var result []models.LogEntry
	for _, entry := range logs {
		if filter.UserID != "" && entry.UserID != filter.UserID {
			continue
		}
		if filter.Action != "" && entry.Action != filter.Action {
			continue
		}
		result = append(result, entry)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}
