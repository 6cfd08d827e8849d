// Package observability provides logging setup, panic containment and
// graceful shutdown for the console process.
//
// The console serves authorization decisions: a panic in one handler must
// not take down the process that every other workspace depends on, and a
// shutdown must drain in-flight requests before cached credentials are
// wiped. This package owns both edges of the process lifecycle.
package observability
