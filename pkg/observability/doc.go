/*
Package observability turns pipeline lifecycle hooks into Prometheus metrics
and structured log lines.

Both producers return a domain.Hooks value; combine them with
domain.MergeHooks and pass the result to the assistant and the dispatcher:

	metrics := observability.NewMetrics()
	hooks := domain.MergeHooks(metrics.Hooks(), observability.LogHooks(logger))
	d := dispatch.New(broker, dispatch.WithHooks(hooks))
	a := hearth.New(reg, hearth.WithHooks(hooks))
	http.Handle("/metrics", metrics.Handler())
*/
package observability
