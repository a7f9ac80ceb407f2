// Package httpserver runs the small operational HTTP endpoint of a
// long-running sessionkit process: Prometheus metrics and health probes.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	handler := httpserver.OpsHandler(registry, log, managerReady, redis.Probe(client, cfg, key))
//	if err := srv.Run(ctx, handler); err != nil {
//		return err
//	}
//
// Run blocks until ctx is canceled and then shuts the server down within the
// configured shutdown timeout. OpsHandler serves:
//
//	GET /metrics   Prometheus exposition of the given gatherer
//	GET /healthz   always 200 "ALIVE"
//	GET /readyz    200 "READY" when every probe passes, 503 "NOT_READY" otherwise
package httpserver
