// Package transport
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Reference in-process transport behind the api contracts.
//
// Resources are built bottom-up: a Node opens named services, services
// create ports (notifier/listener for eventing, publisher/subscriber for
// payload delivery), publishers loan pooled samples. Every resource is
// held through a handle and must be released; closing a node releases
// everything created under it, newest first.
//
// Services rendezvous by name in a process-wide directory, standing in
// for the shared-memory segment directory of a cross-process deployment.
// Delivery guarantees are intentionally simple: eventing queues are
// unbounded FIFOs, subscriber queues are bounded rings that displace the
// oldest sample on overflow.
package transport
