// Package bluenrg decodes vendor-specific HCI events produced by the
// BlueNRG family of Bluetooth Low Energy controllers.
//
// The BlueNRG firmware reports GAP, GATT, ATT and L2CAP activity through
// vendor-specific HCI events. The transport layer hands a complete event
// payload (starting with a 2-byte little-endian vendor opcode) to this
// module, which returns either a strongly typed event value or a decode
// error describing exactly which validation rule failed.
//
// The decoding engine lives in the event subpackage. The hci subpackage
// holds the envelope error contract shared with the transport layer. This
// package adds the glue around it: a Monitor that reassembles H4 frames
// from a byte stream and dispatches decoded events, a pluggable Logger,
// and a DeviceCache for discovered devices.
package bluenrg
