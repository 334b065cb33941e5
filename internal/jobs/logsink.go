// Package jobs содержит фоновые задачи CRM: heartbeat, напоминания по
// заказам, пополнение склада и еженедельный отчёт. Задачи ходят в CRM
// через HTTP API и пишут результаты в append-only лог-файлы.
package jobs

import (
	"fmt"
	"os"
	"sync"
)

// LogSink дописывает строки в файл. Потокобезопасен.
type LogSink struct {
	mu   sync.Mutex
	path string
}

// NewLogSink создаёт sink для файла path. Файл создаётся при первой записи.
func NewLogSink(path string) *LogSink {
	return &LogSink{path: path}
}

// Path возвращает путь файла.
func (s *LogSink) Path() string {
	return s.path
}

// Append дописывает строку и перевод строки в конец файла.
func (s *LogSink) Append(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file %s: %w", s.path, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, line); err != nil {
		return fmt.Errorf("append to log file %s: %w", s.path, err)
	}
	return nil
}

// Appendf дописывает отформатированную строку.
func (s *LogSink) Appendf(format string, args ...any) error {
	return s.Append(fmt.Sprintf(format, args...))
}
