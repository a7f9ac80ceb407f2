// Package requestid carries a correlation id through a context.
//
// Every call the GoTrue client makes sends the id from its context as the
// X-Request-Id header, generating one per call when the context has none.
// sessionctl stores one id per command with Ensure so that all auth server
// calls of that command share it, and LoggerExtractor adds it to log records:
//
//	ctx, id := requestid.Ensure(ctx)
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
//
// Middleware does the same for inbound requests to the ops endpoint,
// accepting a well-formed client supplied id and echoing it back.
package requestid
