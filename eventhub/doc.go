// Package eventhub is the boundary between the identity extension and the host event
// hub.
//
// Requests reach the extension as Events (update, remove, get, reset, legacy ECID and
// advertising identifier changes). The extension answers through a Hub: it publishes
// its XDM shared state after every change and dispatches response and notification
// events such as reset complete.
//
// Three Hub implementations are provided:
//
//   - Recorder keeps everything in memory; it backs tests and embedded hosts that poll
//     the latest state
//   - WatermillHub publishes on an in-process Watermill GoChannel and lets hosts
//     subscribe to the event stream
//   - RedisHub publishes on a Redis pub/sub channel behind a circuit breaker so that a
//     struggling Redis does not stall identity requests
//
// Events travel as JSON:
//
//	{"id":"...","name":"Update Identity Event","type":"com.adobe.eventType.edgeIdentity",
//	 "source":"com.adobe.eventSource.updateIdentity","data":{...},"timestamp":"..."}
package eventhub
