package version

import "fmt"

// Заполняются при сборке через -ldflags "-X ...".
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// Build описывает конкретную сборку бинаря.
type Build struct {
	Version string
	Commit  string
	Date    string
}

// Current возвращает информацию о текущей сборке.
func Current() Build {
	return Build{Version: version, Commit: commit, Date: buildDate}
}

// GetVersion возвращает только номер версии (для health-ответов).
func GetVersion() string { return version }

// String форматирует сборку для логов.
func (b Build) String() string {
	return fmt.Sprintf("version=%s commit=%s date=%s", b.Version, b.Commit, b.Date)
}
