// Package logger wraps zap for the alarm clock binaries:
//   - a global sugared logger with a console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level configuration and parsing utilities,
//   - convenience functions taking a context (DebugKV, Info, InfoKV, WarnKV, ErrorKV).
//
// Services receive a context and log through it, so every state machine,
// the scheduler and the transports write scoped, structured entries.
package logger
