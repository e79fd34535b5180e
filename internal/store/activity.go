package store

import (
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// LogLevel — уровень записи журнала активности.
type LogLevel string

const (
	LogLevelInfo  LogLevel = "info"
	LogLevelError LogLevel = "error"
)

// LogEntry — одна запись скользящего журнала активности.
type LogEntry struct {
	ID      string
	At      time.Time
	Level   LogLevel
	Message string
}

// NotificationKind — тип всплывающего уведомления.
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// Notification — транзиентное уведомление для оператора. Живёт фиксированное
// время независимо от судьбы мутации, которая его породила.
type Notification struct {
	ID      string
	Kind    NotificationKind
	Message string
	At      time.Time
}

// ActivityLog возвращает журнал активности, свежие записи первыми.
func (s *Store) ActivityLog() []LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]LogEntry(nil), s.entries...)
}

// Notifications возвращает активные уведомления.
func (s *Store) Notifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Notification(nil), s.notifications...)
}

// appendLog добавляет запись в начало журнала и обрезает его до ёмкости.
func (s *Store) appendLog(level LogLevel, message string) {
	entry := LogEntry{
		ID:      uuid.NewString(),
		At:      s.now(),
		Level:   level,
		Message: message,
	}

	s.mu.Lock()
	s.entries = append([]LogEntry{entry}, s.entries...)
	if len(s.entries) > s.logCap {
		s.entries = s.entries[:s.logCap]
	}
	s.mu.Unlock()
}

// logInfo пишет в журнал активности и в структурный лог.
func (s *Store) logInfo(message string, fields log.Fields) {
	s.appendLog(LogLevelInfo, message)
	s.logger.WithFields(fields).Info(message)
}

// logError пишет ошибку в журнал активности и в структурный лог.
func (s *Store) logError(message string, err error, fields log.Fields) {
	s.appendLog(LogLevelError, message+": "+err.Error())
	s.logger.WithError(err).WithFields(fields).Error(message)
}

// notify создаёт уведомление и планирует его снятие через TTL.
func (s *Store) notify(kind NotificationKind, message string) string {
	n := Notification{
		ID:      uuid.NewString(),
		Kind:    kind,
		Message: message,
		At:      s.now(),
	}

	s.mu.Lock()
	s.notifications = append(s.notifications, n)
	s.mu.Unlock()

	time.AfterFunc(s.ttl, func() {
		s.dismiss(n.ID)
	})
	return n.ID
}

// dismiss снимает уведомление по идентификатору; повторный вызов — no-op.
func (s *Store) dismiss(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}
