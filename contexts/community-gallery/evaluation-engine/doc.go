// Package evaluationengine implements the photo evaluation quorum engine
// inside the community-gallery context.
//
// The module owns evaluation recording (one immutable verdict per evaluator
// per photo), the evaluator work queue, quorum-based approval decisions, and
// decision event production through an outbox-backed relay. It keeps business
// rules in application/domain layers and isolates infrastructure concerns
// behind ports and adapters.
package evaluationengine
