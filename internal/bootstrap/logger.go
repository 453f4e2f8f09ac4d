package bootstrap

import (
	"context"
	"goal-navigator/internal/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

func newLogger(lc fx.Lifecycle, config *config.Config) (*zap.Logger, error) {
	var zapConfig zap.Config

	if config.AppConfig.Debug {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	zapConfig.DisableStacktrace = true

	switch config.AppConfig.LogLevel {
	case "debug":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	var opts []zap.Option

	rotator := fileSink(config.AppConfig)
	if rotator != nil {
		fileCore := zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(rotator),
			zapConfig.Level,
		)

		opts = append(opts, zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(core, fileCore)
		}))
	}

	logger, err := zapConfig.Build(opts...)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			_ = logger.Sync()

			if rotator != nil {
				return rotator.Close()
			}

			return nil
		},
	})

	return logger, nil
}

// fileSink returns the rotating log file writer, or nil when LOG_FILE is unset.
func fileSink(cfg *config.AppConfig) *lumberjack.Logger {
	if cfg.LogFile == "" {
		return nil
	}

	return &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAgeDays,
		Compress:   true,
	}
}
