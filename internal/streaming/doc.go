// Package streaming protects long HTTP responses from slow or vanished
// clients. TimeoutWriter bounds individual writes, detects idle
// connections, and chunks large payloads so cancellation is noticed
// quickly; StreamFile serves transcoded outputs through it. EventStream
// pushes job and batch progress as server-sent events.
package streaming
