// Package redis connects to Redis and provides the cross-process run lock
// that keeps two dispatchers off the same ledger.
//
// Open parses redis:// or rediss:// URLs and pings with retries:
//
//	client, err := redis.Open(ctx, os.Getenv("REDIS_URL"))
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
// # Run lock
//
// Locker takes a lock with SET NX PX under a random token and releases it
// with a compare-and-delete script, so a holder never deletes a lock that
// expired and was taken by someone else:
//
//	locker := redis.NewLocker(client)
//	err := locker.WithLock(ctx, "mailmerge:lock:"+ledgerPath, func(ctx context.Context) error {
//		return runBatch(ctx)
//	})
//	if errors.Is(err, redis.ErrLocked) {
//		// another process is sending
//	}
//
// WithLock extends the lock while the function runs and cancels the
// function's context if the lock is lost.
//
// [Healthcheck] returns a readiness probe for the daemon's /readyz route.
package redis
