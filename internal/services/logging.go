package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"
)

type contextKey string

// RequestIDKey and UserIDKey are the context keys handlers store request scoped values under.
const (
	RequestIDKey contextKey = "request_id"
	UserIDKey    contextKey = "user_id"
)

// ServiceLogger provides structured logging for service layer operations
type ServiceLogger struct {
	logger *slog.Logger
	config LogConfig
}

type LogConfig struct {
	Service     string
	Component   string
	EnableDebug bool
}

func NewServiceLogger(logger *slog.Logger, config LogConfig) *ServiceLogger {
	return &ServiceLogger{
		logger: logger.With("service", config.Service, "component", config.Component),
		config: config,
	}
}

// UserID returns the authenticated user stored in ctx, if any.
func UserID(ctx context.Context) string {
	if v, ok := ctx.Value(UserIDKey).(string); ok {
		return v
	}
	return ""
}

// canAccess reports whether the caller may see a record owned by owner.
// Without an authenticated user every record is visible.
func canAccess(ctx context.Context, owner string) bool {
	user := UserID(ctx)
	return user == "" || user == owner
}

// LogOperation logs the outcome of one operation at a level chosen by error class.
func (l *ServiceLogger) LogOperation(ctx context.Context, operation, resourceID, resourceType string, duration time.Duration, err error) {
	level := slog.LevelInfo
	status := "success"

	if err != nil {
		level = slog.LevelError
		status = "error"

		switch {
		case IsValidation(err) || IsBusinessRule(err):
			level = slog.LevelWarn
			status = "validation_error"
		case IsUnauthorized(err):
			level = slog.LevelWarn
			status = "unauthorized"
		case IsNotFound(err):
			level = slog.LevelInfo
			status = "not_found"
		case errors.Is(err, context.Canceled):
			level = slog.LevelInfo
			status = "canceled"
		}
	}

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("resource_id", resourceID),
		slog.String("resource_type", resourceType),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}
	if userID := UserID(ctx); userID != "" {
		attrs = append(attrs, slog.String("user_id", userID))
	}
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		attrs = append(attrs, slog.String("request_id", requestID))
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))

		var validationErr ValidationErrors
		var businessErr *BusinessRuleError
		if errors.As(err, &validationErr) {
			attrs = append(attrs, slog.Int("validation_errors_count", len(validationErr)))
		} else if errors.As(err, &businessErr) {
			attrs = append(attrs, slog.String("business_rule", businessErr.Rule))
		}

		if level == slog.LevelError {
			if pc, file, line, ok := runtime.Caller(1); ok {
				if fn := runtime.FuncForPC(pc); fn != nil {
					attrs = append(attrs,
						slog.String("caller_func", fn.Name()),
						slog.String("caller_file", file),
						slog.Int("caller_line", line),
					)
				}
			}
		}
	}

	l.logger.LogAttrs(ctx, level, fmt.Sprintf("%s operation %s", operation, status), attrs...)
}

// LogValidationWarnings records tolerated validation problems of AI or imported payloads.
func (l *ServiceLogger) LogValidationWarnings(ctx context.Context, operation string, warnings ValidationErrors) {
	if len(warnings) == 0 {
		return
	}
	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.Int("warning_count", len(warnings)),
	}
	for i, w := range warnings {
		if i == 5 {
			break
		}
		attrs = append(attrs, slog.Group(fmt.Sprintf("warning_%d", i+1),
			slog.String("field", w.Field),
			slog.String("message", w.Message),
		))
	}
	l.logger.LogAttrs(ctx, slog.LevelWarn, "Question payload has structural problems", attrs...)
}

func (l *ServiceLogger) Debug(ctx context.Context, msg string, args ...any) {
	if l.config.EnableDebug {
		l.logger.DebugContext(ctx, msg, args...)
	}
}

func (l *ServiceLogger) Info(ctx context.Context, msg string, args ...any) {
	l.logger.InfoContext(ctx, msg, args...)
}

func (l *ServiceLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, msg, args...)
}

// ContextualLogger times one operation
type ContextualLogger struct {
	*ServiceLogger
	ctx       context.Context
	operation string
	startTime time.Time
}

func (l *ServiceLogger) WithOperation(ctx context.Context, operation string) *ContextualLogger {
	return &ContextualLogger{
		ServiceLogger: l,
		ctx:           ctx,
		operation:     operation,
		startTime:     time.Now(),
	}
}

func (cl *ContextualLogger) LogResult(resourceID, resourceType string, err error) {
	cl.LogOperation(cl.ctx, cl.operation, resourceID, resourceType, time.Since(cl.startTime), err)
}
