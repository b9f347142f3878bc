package notify

import (
	"log/slog"

	"github.com/rickgao/mock-auction/internal/model"
)

// LogSink logs every sale.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Notify(notice model.SaleNotice) {
	s.logger.Info(notice.Message(),
		"player", notice.PlayerName,
		"team", notice.Team,
		"foreign", notice.Foreign,
	)
}

// Tee fans a notice out to several sinks in order. Nil sinks are skipped.
func Tee(sinks ...Sink) Sink {
	out := make(tee, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

type tee []Sink

func (t tee) Notify(notice model.SaleNotice) {
	for _, s := range t {
		s.Notify(notice)
	}
}
