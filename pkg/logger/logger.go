// Package logger 标准库 log 之上的一层薄封装，配置了 token 时把告警和错误同步上报到 Rollbar
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/rollbar/rollbar-go"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Config 日志配置
type Config struct {
	ServiceName  string
	Level        string // debug, info, warn, error
	Output       string // stdout, file
	Path         string
	RollbarToken string
	Environment  string
	Host         string
	Version      string
}

type Logger struct {
	std     *log.Logger
	level   Level
	rollbar bool
}

// Fields 附加上下文，会一起写入日志并上报
type Fields map[string]any

// New 创建日志实例
func New(conf Config) (*Logger, error) {
	var out io.Writer = os.Stdout
	if conf.Output == "file" && conf.Path != "" {
		f, err := os.OpenFile(conf.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
	}

	prefix := ""
	if conf.ServiceName != "" {
		prefix = "[" + conf.ServiceName + "] "
	}

	l := &Logger{
		std:   log.New(out, prefix, log.LstdFlags|log.Lmsgprefix),
		level: ParseLevel(conf.Level),
	}

	if conf.RollbarToken != "" {
		rollbar.SetToken(conf.RollbarToken)
		rollbar.SetEnvironment(conf.Environment)
		rollbar.SetServerHost(conf.Host)
		rollbar.SetCodeVersion(conf.Version)
		rollbar.SetEnabled(true)
		l.rollbar = true
	} else {
		rollbar.SetEnabled(false)
	}

	return l, nil
}

// Default 只写标准输出，不上报
func Default() *Logger {
	return &Logger{std: log.Default(), level: LevelInfo}
}

// Discard 测试用
func Discard() *Logger {
	return &Logger{std: log.New(io.Discard, "", 0), level: LevelError}
}

func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Std 暴露底层 *log.Logger，供需要标准 logger 的组件使用
func (l *Logger) Std() *log.Logger {
	return l.std
}

func (l *Logger) Debug(msg string, fields ...Fields) {
	l.print(LevelDebug, "DEBUG", msg, nil, fields)
}

func (l *Logger) Info(msg string, fields ...Fields) {
	l.print(LevelInfo, "INFO", msg, nil, fields)
}

func (l *Logger) Warn(msg string, fields ...Fields) {
	l.print(LevelWarn, "WARN", msg, nil, fields)
	if l.rollbar {
		rollbar.Warning(msg, merge(fields))
	}
}

func (l *Logger) Error(msg string, err error, fields ...Fields) {
	l.print(LevelError, "ERROR", msg, err, fields)
	if l.rollbar {
		extras := merge(fields)
		extras["message"] = msg
		if err != nil {
			rollbar.Error(err, extras)
		} else {
			rollbar.Error(msg, extras)
		}
	}
}

// Close 等待 Rollbar 队列发送完毕
func (l *Logger) Close() {
	if l.rollbar {
		rollbar.Wait()
	}
}

func (l *Logger) print(level Level, tag, msg string, err error, fields []Fields) {
	if level < l.level {
		return
	}
	var b strings.Builder
	b.WriteString(tag)
	b.WriteString(" ")
	b.WriteString(msg)
	if err != nil {
		fmt.Fprintf(&b, " error=%q", err.Error())
	}
	for k, v := range merge(fields) {
		fmt.Fprintf(&b, " %s=%v", k, v)
	}
	l.std.Println(b.String())
}

func merge(fields []Fields) map[string]interface{} {
	out := make(map[string]interface{})
	for _, f := range fields {
		for k, v := range f {
			out[k] = v
		}
	}
	return out
}
