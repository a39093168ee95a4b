// Package pipeline drives the batch download workflow. A Dispatcher fans
// episodes out to one runner goroutine each under a bounded concurrency
// limit, and every runner walks its episode through fetch, subtitle,
// mux, verify, and publish steps while reporting through the console
// tracker and the run ledger.
//
// Cancellation is cooperative: the context handed to Run is observed at
// every step boundary and inside the fetch stream, but the mux call is
// deliberately allowed to finish once started. All shared state (the
// permit pool, tracker rows, ledger writes) is owned by dedicated
// components with their own locking; the dispatcher itself only joins
// goroutines.
package pipeline
