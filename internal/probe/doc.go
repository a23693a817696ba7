// Package probe checks whether external dependencies are ready to serve.
//
// Postgres connects, pings and reads the server version in one call, so it can
// be used directly as a retry.Action:
//
//	p, err := probe.NewPostgres(dsn)
//	if err != nil {
//	    return err
//	}
//	version, err := r.Run(p.Ping).Wait(ctx)
package probe
