// Package bounded runs blocking operations under a fixed wall-clock budget.
//
// Every driver call that can hang (element lookups, waits, window polling,
// browser close) goes through Run or Value. The operation receives a context
// carrying the deadline so well-behaved callees can stop early; when a callee
// ignores it, the caller still gets ErrTimeout once the budget elapses and the
// goroutine is left to finish on its own.
package bounded
