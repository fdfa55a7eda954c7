package logger

import (
	"github.com/sirupsen/logrus"
)

// Log глобальный логгер приложения. До вызова Init пишет в stderr с уровнем info,
// чтобы фоновые задачи и тесты не паниковали на nil.
var Log = logrus.New()

// Init инициализирует структурированный логгер.
func Init(level string) {
	Log = logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	// Используем JSON формат для production, text для development
	Log.SetFormatter(&logrus.JSONFormatter{})
}

// SetTextFormatter устанавливает текстовый формат логов (для development).
func SetTextFormatter() {
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

// RecoveryLogger пишет паники фоновых горутин в общий логгер.
type RecoveryLogger struct{}

// Errorf реализует goroutine.Logger.
func (RecoveryLogger) Errorf(format string, args ...interface{}) {
	Log.Errorf(format, args...)
}

// Recovery возвращает адаптер логгера для обработчика паник в горутинах.
func Recovery() RecoveryLogger {
	return RecoveryLogger{}
}
