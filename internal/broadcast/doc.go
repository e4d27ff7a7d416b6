// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

/*
Package broadcast fans location fixes out to live room viewers.

The Dispatcher is the read side of the connection registry: it resolves the
members of a device room, serializes the fix once into the location-update
wire envelope, and pushes the identical bytes to every member concurrently.
Each push is bounded by a timeout so a dead or slow connection cannot delay
the others.

Per-push results are classified by the transport adapter into three
outcomes:

  - Delivered: counted in the report.
  - TransientFailure: the connection may still be viable; the registry is
    untouched and no retry is attempted. The next fix tries again.
  - PermanentFailure: the connection is gone; the dispatcher evicts it
    through the lifecycle manager so future publishes skip it.

Delivery is at-most-once and best-effort. Publish never fails because of
partial delivery; it errors only when membership resolution or payload
serialization fails. Publishing to an empty room returns a zero report and
no error.

The wire payload pushed to viewers:

	{
	  "type": "location-update",
	  "deviceCode": "DEV001",
	  "iotSimNumber": "89911234",
	  "data": {
	    "lat": "12.9716",
	    "long": "77.5946",
	    "speed": "42",
	    "trackedAt": "2026-03-01T12:00:00Z"
	  }
	}

No cross-member ordering is guaranteed; each payload carries its own
trackedAt so consumers resolve out-of-order arrival by timestamp.
*/
package broadcast
