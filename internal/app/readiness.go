package app

import "context"

// Pinger is the minimal connectivity probe shared by the archive pool, the
// question cache, and the event publisher.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BuildReadinessChecks returns probes for the configured backends. A nil
// client yields a nil check, which the readiness handler reports as skipped
// rather than failing: optional backends that were never configured must not
// mark the service unready.
func BuildReadinessChecks(pool, cache, events Pinger) (dbCheck, redisCheck, kafkaCheck func(ctx context.Context) error) {
	if pool != nil {
		dbCheck = pool.Ping
	}
	if cache != nil {
		redisCheck = cache.Ping
	}
	if events != nil {
		kafkaCheck = events.Ping
	}
	return dbCheck, redisCheck, kafkaCheck
}
