// Package submissionservice implements photo submission admission inside the
// community-gallery context.
//
// The module owns the pending-queue capacity gate, the weekly submission quota
// with its rolling window, priority lane placement for contributors, and the
// read models for queue status and listings.
package submissionservice
