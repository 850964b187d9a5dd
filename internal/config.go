package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Config is the server side environment. Every knob has a default so the
// relay boots with no configuration at all.
type Config struct {
	Host              string        `env:"HOST,default=0.0.0.0"`
	Port              int           `env:"PORT,default=8080"`
	LogLevel          string        `env:"LOG_LEVEL,default=INFO"`
	BufferSize        int           `env:"BUFFER_SIZE,default=256"`
	SinkTimeout       time.Duration `env:"SINK_TIMEOUT,default=2s"`
	RestartInterval   time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL,default=30s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s"`

	// MaxContentLength caps message length in runes, 0 means unlimited.
	MaxContentLength int `env:"MAX_CONTENT_LENGTH,default=0"`

	// CensoredWords is a comma separated dictionary, empty disables moderation.
	CensoredWords   string `env:"CENSORED_WORDS"`
	CharReplacement string `env:"CHARACTER_REPLACEMENT,default=*"`

	// ArchivePath enables the on disk archive when set.
	ArchivePath string `env:"ARCHIVE_PATH"`

	// IndexPath persists the search index when set, otherwise it lives in memory.
	IndexPath string `env:"INDEX_PATH"`

	// DebugPort serves the archive inspector when the log level is DEBUG.
	DebugPort int `env:"DEBUG_PORT,default=8081"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}

// CensoredWordsList splits the raw dictionary, dropping blanks so a
// trailing comma never produces an unusable pattern.
func CensoredWordsList(str string) []string {
	return lo.FilterMap(strings.Split(str, ","), func(part string, _ int) (string, bool) {
		word := strings.TrimSpace(part)
		return word, word != ""
	})
}
