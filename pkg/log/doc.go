// Package log provides the logging abstraction used across meetbot.
//
// Components depend on the [Logger] interface only. The process entry point
// wires a zerolog-backed adapter writing human-readable lines to stderr; tests
// use [NewNoopLogger].
//
//	logger := log.NewZerologAdapter(os.Stderr)
//	logger.Info("state transition", log.String("from", "Unstarted"), log.String("to", "Configuring"))
//
// Verbosity is process-wide. [SetLevel] may be called at any time, which is
// how a configuration reload changes the level of a running bot.
package log
