package obs

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Time logs and records the duration of an operation. Use it as
//
//	defer obs.Time(ctx, "op.name")(&err)
//
// The logger is taken from ctx (zerolog.Ctx); the request id is already
// attached to it by the HTTP middleware.
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	return func(errp *error) {
		dur := time.Since(start)
		l := zerolog.Ctx(ctx)

		outcome := "ok"
		if errp != nil && *errp != nil {
			outcome = "error"
			l.Warn().Str("op", name).Dur("dur", dur).Err(*errp).Msg("operation failed")
		} else {
			l.Debug().Str("op", name).Dur("dur", dur).Msg("operation done")
		}
		operationDuration.WithLabelValues(name, outcome).Observe(dur.Seconds())
	}
}
