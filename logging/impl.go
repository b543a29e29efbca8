package logging

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// fanoutLogger builds each entry once and hands it to every appender.
type fanoutLogger struct {
	name      string
	level     AtomicLevel
	inUTC     bool
	appenders []Appender
}

func newFanoutLogger(name string, level Level, inUTC bool, appenders ...Appender) *fanoutLogger {
	return &fanoutLogger{
		name:      name,
		level:     NewAtomicLevelAt(level),
		inUTC:     inUTC,
		appenders: appenders,
	}
}

func (l *fanoutLogger) AddAppender(appender Appender) {
	l.appenders = append(l.appenders, appender)
}

func (l *fanoutLogger) SetLevel(level Level) {
	l.level.Set(level)
}

func (l *fanoutLogger) GetLevel() Level {
	return l.level.Get()
}

func (l *fanoutLogger) Sublogger(subname string) Logger {
	name := subname
	if l.name != "" {
		name = l.name + "." + subname
	}
	return newFanoutLogger(name, l.level.Get(), l.inUTC, l.appenders...)
}

func (l *fanoutLogger) Sync() error {
	var errs []error
	for _, appender := range l.appenders {
		errs = append(errs, appender.Sync())
	}
	return multierr.Combine(errs...)
}

func (l *fanoutLogger) enabled(level Level) bool {
	return level >= l.level.Get()
}

// debugEnabled also honors a context put into debug mode.
func (l *fanoutLogger) debugEnabled(ctx context.Context) bool {
	return l.enabled(DEBUG) || IsDebugMode(ctx)
}

// emit must be called directly by the exported logging method so the recorded caller is the code
// that logged.
func (l *fanoutLogger) emit(level Level, msg string, fields []zapcore.Field) {
	const callerDepth = 3
	entry := zapcore.Entry{
		Level:      level.AsZap(),
		Time:       time.Now(),
		LoggerName: l.name,
		Message:    msg,
		Caller:     entryCaller(callerDepth),
	}
	if l.inUTC {
		entry.Time = entry.Time.UTC()
	}
	for _, appender := range l.appenders {
		if err := appender.Write(entry, fields); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

// logged as the value of a trailing key that has none.
const unpairedKeyValue = "unpaired log key"

// fieldsOf pairs up alternating keys and values. A trailing key without a value is kept.
func fieldsOf(keysAndValues []interface{}) []zapcore.Field {
	fields := make([]zapcore.Field, 0, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		var value interface{} = unpairedKeyValue
		if i+1 < len(keysAndValues) {
			value = keysAndValues[i+1]
		}
		fields = append(fields, zap.Any(key, value))
	}
	return fields
}

func (l *fanoutLogger) Debug(args ...interface{}) {
	if l.enabled(DEBUG) {
		l.emit(DEBUG, fmt.Sprint(args...), nil)
	}
}

func (l *fanoutLogger) Debugf(template string, args ...interface{}) {
	if l.enabled(DEBUG) {
		l.emit(DEBUG, fmt.Sprintf(template, args...), nil)
	}
}

func (l *fanoutLogger) Debugw(msg string, keysAndValues ...interface{}) {
	if l.enabled(DEBUG) {
		l.emit(DEBUG, msg, fieldsOf(keysAndValues))
	}
}

func (l *fanoutLogger) CDebug(ctx context.Context, args ...interface{}) {
	if l.debugEnabled(ctx) {
		l.emit(DEBUG, fmt.Sprint(args...), nil)
	}
}

func (l *fanoutLogger) CDebugf(ctx context.Context, template string, args ...interface{}) {
	if l.debugEnabled(ctx) {
		l.emit(DEBUG, fmt.Sprintf(template, args...), nil)
	}
}

func (l *fanoutLogger) CDebugw(ctx context.Context, msg string, keysAndValues ...interface{}) {
	if l.debugEnabled(ctx) {
		l.emit(DEBUG, msg, fieldsOf(keysAndValues))
	}
}

func (l *fanoutLogger) Info(args ...interface{}) {
	if l.enabled(INFO) {
		l.emit(INFO, fmt.Sprint(args...), nil)
	}
}

func (l *fanoutLogger) Infof(template string, args ...interface{}) {
	if l.enabled(INFO) {
		l.emit(INFO, fmt.Sprintf(template, args...), nil)
	}
}

func (l *fanoutLogger) Infow(msg string, keysAndValues ...interface{}) {
	if l.enabled(INFO) {
		l.emit(INFO, msg, fieldsOf(keysAndValues))
	}
}

func (l *fanoutLogger) Warn(args ...interface{}) {
	if l.enabled(WARN) {
		l.emit(WARN, fmt.Sprint(args...), nil)
	}
}

func (l *fanoutLogger) Warnf(template string, args ...interface{}) {
	if l.enabled(WARN) {
		l.emit(WARN, fmt.Sprintf(template, args...), nil)
	}
}

func (l *fanoutLogger) Warnw(msg string, keysAndValues ...interface{}) {
	if l.enabled(WARN) {
		l.emit(WARN, msg, fieldsOf(keysAndValues))
	}
}

func (l *fanoutLogger) Error(args ...interface{}) {
	if l.enabled(ERROR) {
		l.emit(ERROR, fmt.Sprint(args...), nil)
	}
}

func (l *fanoutLogger) Errorf(template string, args ...interface{}) {
	if l.enabled(ERROR) {
		l.emit(ERROR, fmt.Sprintf(template, args...), nil)
	}
}

func (l *fanoutLogger) Errorw(msg string, keysAndValues ...interface{}) {
	if l.enabled(ERROR) {
		l.emit(ERROR, msg, fieldsOf(keysAndValues))
	}
}

// entryCaller describes the frame skip levels above its own, e.g. "motionplan/planner.go:212".
func entryCaller(skip int) zapcore.EntryCaller {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return zapcore.EntryCaller{}
	}
	caller := zapcore.NewEntryCaller(pc, file, line, true)
	if fn := runtime.FuncForPC(pc); fn != nil {
		caller.Function = fn.Name()
	}
	return caller
}
