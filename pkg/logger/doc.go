// Package logger builds *slog.Logger instances for sessionkit components.
//
// A single factory, New, assembles a slog.Handler from functional options:
//
//   • output format (json or text) and minimum level
//   • static attributes attached to every record
//   • context extractors that copy request-scoped values, such as the
//     operation id stamped by the lifecycle manager, into each record
//
// Attribute helpers in attr.go keep key names consistent across packages
// (component, event, subject_id, generation, operation, error).
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment(os.Getenv("APP_ENV"), "sessionctl"),
//	    logger.WithLevelName(os.Getenv("LOG_LEVEL")),
//	)
//	log.Info("session restored", logger.SubjectID(s.SubjectID))
//
// Components that receive no logger fall back to Discard so libraries stay
// silent unless the application opts in.
package logger
