package sim

import (
	"context"

	"github.com/san-kum/orrery/internal/logging"
)

// LogObserver writes frame events to a logger. Inspections are logged at
// info, everything else at debug.
type LogObserver struct {
	log logging.Logger
}

func NewLogObserver(log logging.Logger) *LogObserver {
	return &LogObserver{log: log.With(logging.String("component", "events"))}
}

func (o *LogObserver) OnFrame(f Frame) {
	ctx := context.Background()
	for _, e := range f.Events {
		fields := []logging.Field{
			logging.String("event", e.Kind.String()),
			logging.Int64("day", f.Day),
			logging.Any("frame", f.Index),
			logging.Float("multiplier", f.Multiplier),
			logging.Bool("paused", f.Paused),
		}
		if e.Body != "" {
			fields = append(fields, logging.String("body", e.Body))
		}
		if e.Kind == EventInspect {
			o.log.Info(ctx, "inspect", fields...)
			continue
		}
		o.log.Debug(ctx, "event", fields...)
	}
}

// Recorder keeps a bounded history of frames for headless runs. A zero
// Limit keeps every frame.
type Recorder struct {
	Limit  int
	Frames []Frame
}

func (r *Recorder) OnFrame(f Frame) {
	if r.Limit > 0 && len(r.Frames) >= r.Limit {
		r.Frames = append(r.Frames[:0], r.Frames[1:]...)
	}
	r.Frames = append(r.Frames, f)
}
