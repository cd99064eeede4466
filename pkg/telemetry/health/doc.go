// Package health provides liveness and readiness probes for the validation
// server.
//
// Readiness distinguishes two kinds of checks. The vocabulary check is
// critical: without a vocabulary no deposit can be validated, so the probe
// answers 503. The lookup service checks are optional: when a service is
// down the server still validates, reporting network failures per cell,
// so the probe answers 200 with status "degraded".
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("vocabulary", health.VocabularyCheck(store))
//	checker.RegisterOptionalCheck("identifier", health.ServiceCheck(identifier))
//
//	r.Get("/health/live", checker.LivenessHandler())
//	r.Get("/health/ready", checker.ReadinessHandler())
package health
