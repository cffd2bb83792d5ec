// Package health provides the liveness and readiness handlers of the
// scheduling daemon.
//
// [LivenessHandler] always answers OK while the process runs.
// [ReadinessHandler] runs a set of named [Checks] concurrently under a
// timeout and answers 503 when any of them fails:
//
//	r.Get("/healthz", health.LivenessHandler())
//	r.Get("/readyz", health.ReadinessHandler(health.Checks{
//		"templates": health.PathCheck("templates"),
//		"ledger":    db.Healthcheck(pool),
//		"redis":     redis.Healthcheck(client),
//	}, health.WithLogger(log)))
//
// Responses are plain text ("OK" or "Service Unavailable") unless the client
// asks for JSON with Accept: application/json or ?format=json:
//
//	{
//	  "status": "unhealthy",
//	  "checks": {
//	    "ledger": {"status": "healthy"},
//	    "redis": {"status": "unhealthy", "error": "connection refused"}
//	  }
//	}
package health
