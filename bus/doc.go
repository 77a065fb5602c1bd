// Package bus provides the NATS-backed transport the bridge uses in place
// of raw TCP reply sockets: request/reply for the command and health
// endpoints, and publish for feedback events. Connection loss is handled
// with a circuit breaker and exponential backoff.
//
//	client, _ := bus.NewClient(natsURL, bus.WithMaxReconnects(-1))
//	_ = client.Connect(ctx)
//	_ = client.Reply(ctx, "bridge.command", handleCommand)
//	_ = client.Publish(ctx, "bridge.feedback", event)
package bus
