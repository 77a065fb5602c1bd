// Package feedback: see parser.go for the wire grammar and reader.go for
// the reconnect-with-backoff consumer loop.
//
//	reader := feedback.New(host, port, "bridge.feedback", state, bus, metrics, nil)
//	go reader.Run(ctx)
package feedback
