package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

type Logger struct {
	*logrus.Logger
}

var defaultLogger *Logger

func Init(level, format string) *Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	if format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	defaultLogger = &Logger{Logger: log}
	return defaultLogger
}

func GetLogger() *Logger {
	if defaultLogger == nil {
		return Init("info", "text")
	}
	return defaultLogger
}

func (l *Logger) WithField(key string, value interface{}) *logrus.Entry {
	return l.Logger.WithField(key, value)
}

func (l *Logger) WithFields(fields logrus.Fields) *logrus.Entry {
	return l.Logger.WithFields(fields)
}

func (l *Logger) WithError(err error) *logrus.Entry {
	return l.Logger.WithError(err)
}

func (l *Logger) WithUserID(userID string) *logrus.Entry {
	return l.Logger.WithField("user_id", userID)
}

func (l *Logger) WithRequestID(requestID string) *logrus.Entry {
	return l.Logger.WithField("request_id", requestID)
}

// WithErrand tags an entry with an errand request id.
func (l *Logger) WithErrand(requestID string) *logrus.Entry {
	return l.Logger.WithField("errand_id", requestID)
}

// LogRequestEvent records a lifecycle transition for an errand request.
func (l *Logger) LogRequestEvent(requestID, event, status string) {
	l.WithFields(logrus.Fields{
		"errand_id": requestID,
		"event":     event,
		"status":    status,
	}).Info("request event")
}

// LogWebSocketEvent records realtime channel activity.
func (l *Logger) LogWebSocketEvent(conversationID, userID, event string) {
	l.WithFields(logrus.Fields{
		"conversation_id": conversationID,
		"user_id":         userID,
		"event":           event,
	}).Debug("websocket event")
}
