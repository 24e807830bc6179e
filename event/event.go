// Package event decodes BlueNRG vendor-specific HCI events.
//
// A Decoder turns one raw event buffer into exactly one typed event
// value, selected by the 16-bit little-endian opcode at the start of
// the buffer. Decoding is all-or-nothing: any length, range or
// enumerant violation fails the whole buffer with a typed error and no
// partial result. Decoders never retain the input buffer; variable
// length payloads are copied into fixed-size storage inside the
// returned event.
package event

import (
	"github.com/bluewire/bluenrg/hci"
)

// Variant selects the firmware flavor the decoder targets. The two
// flavors expose slightly different event sets on the same opcodes, so
// the choice is made once when the decoder is built, not per buffer.
type Variant uint8

const (
	// VariantStandard targets the original BlueNRG firmware.
	VariantStandard Variant = iota

	// VariantExtended targets the BlueNRG-MS firmware. It adds the
	// EventsLost and CrashReport events, replaces the
	// GapReconnectionAddress event with GapAddressNotResolved, and
	// extends GattAttributeModified with the offset and continuation
	// fields.
	VariantExtended
)

func (v Variant) String() string {
	switch v {
	case VariantStandard:
		return "Standard"
	case VariantExtended:
		return "Extended"
	}
	return "Unknown"
}

// Opcode identifies a vendor-specific event type. It is the little
// endian 16-bit value at offset 0 of every event buffer.
type Opcode uint16

const (
	OpcodeHalInitialized                Opcode = 0x0001
	OpcodeEventsLost                    Opcode = 0x0002
	OpcodeCrashReport                   Opcode = 0x0003
	OpcodeGapLimitedDiscoverable        Opcode = 0x0400
	OpcodeGapPairingComplete            Opcode = 0x0401
	OpcodeGapPassKeyRequest             Opcode = 0x0402
	OpcodeGapAuthorizationRequest       Opcode = 0x0403
	OpcodeGapSlaveSecurityInitiated     Opcode = 0x0404
	OpcodeGapBondLost                   Opcode = 0x0405
	OpcodeGapDeviceFound                Opcode = 0x0406
	OpcodeGapProcedureComplete          Opcode = 0x0407
	OpcodeGapAddressResolution          Opcode = 0x0408
	OpcodeL2CapConnectionUpdateResponse Opcode = 0x0800
	OpcodeL2CapProcedureTimeout         Opcode = 0x0801
	OpcodeL2CapConnectionUpdateRequest  Opcode = 0x0802
	OpcodeGattAttributeModified         Opcode = 0x0C01
	OpcodeGattProcedureTimeout          Opcode = 0x0C02
	OpcodeAttExchangeMtuResponse        Opcode = 0x0C03
	OpcodeAttFindInformationResponse    Opcode = 0x0C04
	OpcodeAttFindByTypeValueResponse    Opcode = 0x0C05
	OpcodeAttReadByTypeResponse         Opcode = 0x0C06
	OpcodeAttReadResponse               Opcode = 0x0C07
	OpcodeAttReadBlobResponse           Opcode = 0x0C08
	OpcodeAttReadMultipleResponse       Opcode = 0x0C09
	OpcodeAttReadByGroupTypeResponse    Opcode = 0x0C0A
	OpcodeAttPrepareWriteResponse       Opcode = 0x0C0C
	OpcodeAttExecuteWriteResponse       Opcode = 0x0C0D
	OpcodeGattIndication                Opcode = 0x0C0E
	OpcodeGattNotification              Opcode = 0x0C0F
	OpcodeGattProcedureComplete         Opcode = 0x0C10
	OpcodeAttErrorResponse              Opcode = 0x0C11
	OpcodeGattDiscoverOrReadResponse    Opcode = 0x0C12
	OpcodeAttWritePermitRequest         Opcode = 0x0C13
)

// ConnectionHandle identifies a connection. Handles are identifiers,
// not quantities; they are only ever compared for equality.
type ConnectionHandle uint16

// AttributeHandle identifies an attribute on the ATT server. Like
// connection handles these are opaque identifiers.
type AttributeHandle uint16

// GroupEndHandle is the handle of the last attribute in an attribute
// group.
type GroupEndHandle uint16

// Event is one decoded vendor-specific event. The concrete type is
// determined entirely by the opcode of the source buffer.
type Event interface {
	// Opcode returns the vendor opcode that produced this event.
	Opcode() Opcode
}

// Decoder decodes vendor event buffers for one firmware variant. The
// zero value decodes for VariantStandard. A Decoder is stateless and
// safe for concurrent use.
type Decoder struct {
	Variant Variant
}

type decodeFunc func(*Decoder, []byte) (Event, error)

var decoderTable = map[Opcode]decodeFunc{
	OpcodeHalInitialized:                (*Decoder).decodeHalInitialized,
	OpcodeEventsLost:                    (*Decoder).decodeEventsLost,
	OpcodeCrashReport:                   (*Decoder).decodeCrashReport,
	OpcodeGapLimitedDiscoverable:        (*Decoder).decodeGapLimitedDiscoverable,
	OpcodeGapPairingComplete:            (*Decoder).decodeGapPairingComplete,
	OpcodeGapPassKeyRequest:             (*Decoder).decodeGapPassKeyRequest,
	OpcodeGapAuthorizationRequest:       (*Decoder).decodeGapAuthorizationRequest,
	OpcodeGapSlaveSecurityInitiated:     (*Decoder).decodeGapSlaveSecurityInitiated,
	OpcodeGapBondLost:                   (*Decoder).decodeGapBondLost,
	OpcodeGapDeviceFound:                (*Decoder).decodeGapDeviceFound,
	OpcodeGapProcedureComplete:          (*Decoder).decodeGapProcedureComplete,
	OpcodeGapAddressResolution:          (*Decoder).decodeGapAddressResolution,
	OpcodeL2CapConnectionUpdateResponse: (*Decoder).decodeL2CapConnectionUpdateResponse,
	OpcodeL2CapProcedureTimeout:         (*Decoder).decodeL2CapProcedureTimeout,
	OpcodeL2CapConnectionUpdateRequest:  (*Decoder).decodeL2CapConnectionUpdateRequest,
	OpcodeGattAttributeModified:         (*Decoder).decodeGattAttributeModified,
	OpcodeGattProcedureTimeout:          (*Decoder).decodeGattProcedureTimeout,
	OpcodeAttExchangeMtuResponse:        (*Decoder).decodeAttExchangeMtuResponse,
	OpcodeAttFindInformationResponse:    (*Decoder).decodeAttFindInformationResponse,
	OpcodeAttFindByTypeValueResponse:    (*Decoder).decodeAttFindByTypeValueResponse,
	OpcodeAttReadByTypeResponse:         (*Decoder).decodeAttReadByTypeResponse,
	OpcodeAttReadResponse:               (*Decoder).decodeAttReadResponse,
	OpcodeAttReadBlobResponse:           (*Decoder).decodeAttReadBlobResponse,
	OpcodeAttReadMultipleResponse:       (*Decoder).decodeAttReadMultipleResponse,
	OpcodeAttReadByGroupTypeResponse:    (*Decoder).decodeAttReadByGroupTypeResponse,
	OpcodeAttPrepareWriteResponse:       (*Decoder).decodeAttPrepareWriteResponse,
	OpcodeAttExecuteWriteResponse:       (*Decoder).decodeAttExecuteWriteResponse,
	OpcodeGattIndication:                (*Decoder).decodeGattIndication,
	OpcodeGattNotification:              (*Decoder).decodeGattNotification,
	OpcodeGattProcedureComplete:         (*Decoder).decodeGattProcedureComplete,
	OpcodeAttErrorResponse:              (*Decoder).decodeAttErrorResponse,
	OpcodeGattDiscoverOrReadResponse:    (*Decoder).decodeGattDiscoverOrRead,
	OpcodeAttWritePermitRequest:         (*Decoder).decodeAttWritePermitRequest,
}

// Decode parses one complete vendor event buffer. On success the
// returned Event holds a copy of all payload data; the buffer may be
// reused immediately. On failure the error is either a *hci.LengthError
// or one of the vendor error values defined in this package.
func (d *Decoder) Decode(b []byte) (Event, error) {
	if err := hci.RequireMinLen(b, 2); err != nil {
		return nil, err
	}

	op := Opcode(u16(b, 0))
	fn, ok := decoderTable[op]
	if !ok {
		return nil, &UnknownEventError{Opcode: uint16(op)}
	}
	return fn(d, b)
}

// Events with no payload, and events whose only payload is the
// connection handle.

// GapLimitedDiscoverable is generated when the limited discoverable
// mode ends due to timeout.
type GapLimitedDiscoverable struct{}

// GapSlaveSecurityInitiated is generated when the slave security
// request has been sent to the master.
type GapSlaveSecurityInitiated struct{}

// GapBondLost is generated when a bond re-establishment fails because
// the peer has lost the bond. The application decides whether to allow
// rebonding.
type GapBondLost struct{}

// GapPassKeyRequest asks the application to provide a pass key for
// pairing.
type GapPassKeyRequest struct {
	ConnHandle ConnectionHandle
}

// GapAuthorizationRequest asks the application to authorize attribute
// access after pairing completes.
type GapAuthorizationRequest struct {
	ConnHandle ConnectionHandle
}

// GapAddressNotResolved reports that a privacy-enabled peripheral could
// not resolve the peer's resolvable address. Extended variant only.
type GapAddressNotResolved struct {
	ConnHandle ConnectionHandle
}

// L2CapProcedureTimeout reports that the master did not answer a
// connection update request within 30 seconds.
type L2CapProcedureTimeout struct {
	ConnHandle ConnectionHandle
}

// GattProcedureTimeout reports an ATT procedure timeout. No further
// GATT procedures are possible on this connection.
type GattProcedureTimeout struct {
	ConnHandle ConnectionHandle
}

// AttExecuteWriteResponse is generated in response to an Execute Write
// Request.
type AttExecuteWriteResponse struct {
	ConnHandle ConnectionHandle
}

func (GapLimitedDiscoverable) Opcode() Opcode    { return OpcodeGapLimitedDiscoverable }
func (GapSlaveSecurityInitiated) Opcode() Opcode { return OpcodeGapSlaveSecurityInitiated }
func (GapBondLost) Opcode() Opcode               { return OpcodeGapBondLost }
func (GapPassKeyRequest) Opcode() Opcode         { return OpcodeGapPassKeyRequest }
func (GapAuthorizationRequest) Opcode() Opcode   { return OpcodeGapAuthorizationRequest }
func (GapAddressNotResolved) Opcode() Opcode     { return OpcodeGapAddressResolution }
func (L2CapProcedureTimeout) Opcode() Opcode     { return OpcodeL2CapProcedureTimeout }
func (GattProcedureTimeout) Opcode() Opcode      { return OpcodeGattProcedureTimeout }
func (AttExecuteWriteResponse) Opcode() Opcode   { return OpcodeAttExecuteWriteResponse }

func (d *Decoder) decodeGapLimitedDiscoverable(b []byte) (Event, error) {
	return GapLimitedDiscoverable{}, nil
}

func (d *Decoder) decodeGapSlaveSecurityInitiated(b []byte) (Event, error) {
	return GapSlaveSecurityInitiated{}, nil
}

func (d *Decoder) decodeGapBondLost(b []byte) (Event, error) {
	return GapBondLost{}, nil
}

// connHandle reads the connection handle common to most payloads. The
// handle always sits directly after the opcode.
func connHandle(b []byte) (ConnectionHandle, error) {
	if err := hci.RequireMinLen(b, 4); err != nil {
		return 0, err
	}
	return ConnectionHandle(u16(b, 2)), nil
}

func (d *Decoder) decodeGapPassKeyRequest(b []byte) (Event, error) {
	h, err := connHandle(b)
	if err != nil {
		return nil, err
	}
	return GapPassKeyRequest{ConnHandle: h}, nil
}

func (d *Decoder) decodeGapAuthorizationRequest(b []byte) (Event, error) {
	h, err := connHandle(b)
	if err != nil {
		return nil, err
	}
	return GapAuthorizationRequest{ConnHandle: h}, nil
}

func (d *Decoder) decodeGattProcedureTimeout(b []byte) (Event, error) {
	h, err := connHandle(b)
	if err != nil {
		return nil, err
	}
	return GattProcedureTimeout{ConnHandle: h}, nil
}

func (d *Decoder) decodeL2CapProcedureTimeout(b []byte) (Event, error) {
	if err := hci.RequireExactLen(b, 5); err != nil {
		return nil, err
	}
	if err := requireL2CapDataLen(b, 0); err != nil {
		return nil, err
	}
	return L2CapProcedureTimeout{ConnHandle: ConnectionHandle(u16(b, 2))}, nil
}

func (d *Decoder) decodeAttExecuteWriteResponse(b []byte) (Event, error) {
	h, err := connHandle(b)
	if err != nil {
		return nil, err
	}
	return AttExecuteWriteResponse{ConnHandle: h}, nil
}

// decodeGapAddressResolution handles the one opcode whose payload
// differs by firmware variant. The extended firmware reports a failed
// address resolution; the standard firmware reports the generated
// reconnection address.
func (d *Decoder) decodeGapAddressResolution(b []byte) (Event, error) {
	if d.Variant == VariantExtended {
		h, err := connHandle(b)
		if err != nil {
			return nil, err
		}
		return GapAddressNotResolved{ConnHandle: h}, nil
	}
	return decodeGapReconnectionAddress(b)
}
