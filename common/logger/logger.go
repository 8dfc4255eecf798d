package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	DEBUG = iota
	INFO
	WARN
	ERROR
)

const (
	DefaultFileMaxSize = 10 // MB
	DefaultMaxBackups  = 3
)

type Config struct {
	AppName      string `yaml:"app_name"`
	Level        string `yaml:"level"`
	EnableFile   bool   `yaml:"enable_file"`
	FilePath     string `yaml:"file_path"`
	FileMaxSize  int    `yaml:"file_max_size"`
	MaxBackups   int    `yaml:"max_backups"`
	DisableColor bool   `yaml:"disable_color"`
	EnableJson   bool   `yaml:"enable_json"`
}

var (
	LOG  atomic.Pointer[zap.SugaredLogger]
	sink atomic.Pointer[lumberjack.Logger]
)

func init() {
	LOG.Store(zap.NewNop().Sugar())
}

func ParseLogLevel(level string) (int, error) {
	switch strings.ToUpper(level) {
	case "DEBUG", "":
		return DEBUG, nil
	case "INFO":
		return INFO, nil
	case "WARN":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	default:
		return 0, fmt.Errorf("unknown log level: %v", level)
	}
}

func zapLevel(level int) zapcore.Level {
	switch level {
	case INFO:
		return zapcore.InfoLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.DebugLevel
	}
}

// InitLogger replaces the package logger. A nil config logs DEBUG and above
// to stdout.
func InitLogger(config *Config) error {
	if config == nil {
		config = &Config{AppName: "navmesh", Level: "DEBUG"}
	}
	level, err := ParseLogLevel(config.Level)
	if err != nil {
		return err
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	consoleCfg := encCfg
	if config.DisableColor {
		consoleCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	} else {
		consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	var consoleEnc zapcore.Encoder
	if config.EnableJson {
		consoleEnc = zapcore.NewJSONEncoder(encCfg)
	} else {
		consoleEnc = zapcore.NewConsoleEncoder(consoleCfg)
	}
	enabler := zap.NewAtomicLevelAt(zapLevel(level))
	cores := []zapcore.Core{zapcore.NewCore(consoleEnc, zapcore.Lock(os.Stdout), enabler)}

	var fileSink *lumberjack.Logger
	if config.EnableFile {
		maxSize := config.FileMaxSize
		if maxSize <= 0 {
			maxSize = DefaultFileMaxSize
		}
		backups := config.MaxBackups
		if backups <= 0 {
			backups = DefaultMaxBackups
		}
		name := config.FilePath
		if name == "" {
			name = filepath.Join("log", config.AppName+".log")
		}
		fileSink = &lumberjack.Logger{
			Filename:   name,
			MaxSize:    maxSize,
			MaxBackups: backups,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(fileSink), enabler))
	}

	l := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
	if config.AppName != "" {
		l = l.Named(config.AppName)
	}
	old := LOG.Swap(l.Sugar())
	_ = old.Sync()
	if prev := sink.Swap(fileSink); prev != nil {
		_ = prev.Close()
	}
	return nil
}

func CloseLogger() {
	_ = LOG.Load().Sync()
	if prev := sink.Swap(nil); prev != nil {
		_ = prev.Close()
	}
	LOG.Store(zap.NewNop().Sugar())
}

func Debug(msg string, param ...any) {
	LOG.Load().Debugf(msg, param...)
}

func Info(msg string, param ...any) {
	LOG.Load().Infof(msg, param...)
}

func Warn(msg string, param ...any) {
	LOG.Load().Warnf(msg, param...)
}

func Error(msg string, param ...any) {
	LOG.Load().Errorf(msg, param...)
}
