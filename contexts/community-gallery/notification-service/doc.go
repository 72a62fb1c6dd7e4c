// Package notificationservice implements in-app notifications inside the
// community-gallery context.
//
// Emission is fire and forget from the caller's perspective: the pipeline
// modules log emitter failures and never let them block a submission or a
// decision.
package notificationservice
