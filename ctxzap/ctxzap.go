package ctxzap

import (
	"context"

	"go.uber.org/zap"
)

type loggerKeyType int

const loggerKey loggerKeyType = 0

var nop = zap.NewNop().Sugar()

func ToContext(ctx context.Context, log *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, loggerKey, log)
}

// Extract returns the logger carried by ctx, or a no-op logger when the
// context never went through ToContext.
func Extract(ctx context.Context) *zap.SugaredLogger {
	log, ok := ctx.Value(loggerKey).(*zap.SugaredLogger)
	if !ok {
		return nop
	}

	return log
}

// With re-attaches the context logger enriched with extra fields.
func With(ctx context.Context, args ...any) context.Context {
	return ToContext(ctx, Extract(ctx).With(args...))
}
