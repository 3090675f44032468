// Package updater refreshes externally hosted documents on a fixed
// interval.
//
// An [Updater] is driven by the frame loop through [Updater.Update] or by
// its own ticker through [Updater.Run]. Each due refresh starts a [Task]
// that fetches the configured URL and hands every document to the
// [Processor]. Tasks can be cancelled; completion, failure and
// cancellation are mutually exclusive outcomes.
//
// Fetch counts, processed documents and fetch latency are exported as
// Prometheus metrics on the default registry.
package updater
