package event

import (
	"fmt"

	"github.com/pkg/errors"
)

// The vendor error taxonomy. Every validation rule in this package has
// exactly one error kind, and each kind carries the raw value(s) that
// caused the failure. Kinds with no diagnostic payload are plain
// sentinel errors. Decoders return these values verbatim; nothing in
// the decode path wraps or rewrites them.

// UnknownEventError reports an opcode with no registered decoder. Under
// VariantStandard the extended-only opcodes report this error as well.
type UnknownEventError struct {
	Opcode uint16
}

func (e *UnknownEventError) Error() string {
	return fmt.Sprintf("unknown vendor event 0x%04X", e.Opcode)
}

// UnknownResetReasonError reports an unrecognized reset reason byte in
// the HalInitialized event.
type UnknownResetReasonError struct {
	Value byte
}

func (e *UnknownResetReasonError) Error() string {
	return fmt.Sprintf("unknown reset reason 0x%02X", e.Value)
}

// BadEventFlagsError reports an EventsLost bitfield with at least one
// undefined bit set. Bits holds the full raw pattern.
type BadEventFlagsError struct {
	Bits uint64
}

func (e *BadEventFlagsError) Error() string {
	return fmt.Sprintf("bad event flags 0x%016X", e.Bits)
}

// UnknownCrashReasonError reports an unrecognized crash reason byte in
// the CrashReport event.
type UnknownCrashReasonError struct {
	Value byte
}

func (e *UnknownCrashReasonError) Error() string {
	return fmt.Sprintf("unknown crash reason 0x%02X", e.Value)
}

// BadGapPairingStatusError reports an unrecognized status byte in the
// GAP Pairing Complete event.
type BadGapPairingStatusError struct {
	Value byte
}

func (e *BadGapPairingStatusError) Error() string {
	return fmt.Sprintf("bad GAP pairing status 0x%02X", e.Value)
}

// BadGapDeviceFoundEventError reports an unrecognized advertising event
// type byte in the GAP Device Found event.
type BadGapDeviceFoundEventError struct {
	Value byte
}

func (e *BadGapDeviceFoundEventError) Error() string {
	return fmt.Sprintf("bad GAP device found event type 0x%02X", e.Value)
}

// BadAdvertisingDataLengthError reports a GAP Device Found event whose
// advertising data length byte exceeds MaxAdvertisingDataLen.
type BadAdvertisingDataLengthError struct {
	Value byte
}

func (e *BadAdvertisingDataLengthError) Error() string {
	return fmt.Sprintf("bad advertising data length %d (max %d)", e.Value, MaxAdvertisingDataLen)
}

// BadNameLengthError reports a name discovery completion whose name
// region exceeds MaxNameLen.
type BadNameLengthError struct {
	Value int
}

func (e *BadNameLengthError) Error() string {
	return fmt.Sprintf("bad name length %d (max %d)", e.Value, MaxNameLen)
}

// BadGapBdAddrTypeError reports an unrecognized BDADDR type byte.
type BadGapBdAddrTypeError struct {
	Value byte
}

func (e *BadGapBdAddrTypeError) Error() string {
	return fmt.Sprintf("bad BDADDR type 0x%02X", e.Value)
}

// BadGapProcedureError reports an unrecognized procedure code in the
// GAP Procedure Complete event.
type BadGapProcedureError struct {
	Value byte
}

func (e *BadGapProcedureError) Error() string {
	return fmt.Sprintf("bad GAP procedure code 0x%02X", e.Value)
}

// BadGapProcedureStatusError reports an unrecognized status byte in the
// GAP Procedure Complete event.
type BadGapProcedureStatusError struct {
	Value byte
}

func (e *BadGapProcedureStatusError) Error() string {
	return fmt.Sprintf("bad GAP procedure status 0x%02X", e.Value)
}

// BadL2CapDataLengthError reports an L2CAP event whose event-data
// length byte does not match the fixed value for that event.
type BadL2CapDataLengthError struct {
	Actual   byte
	Required byte
}

func (e *BadL2CapDataLengthError) Error() string {
	return fmt.Sprintf("bad L2CAP event data length: have %d, need %d", e.Actual, e.Required)
}

// BadL2CapLengthError reports an L2CAP event whose inner L2CAP length
// field does not match the fixed value for that event.
type BadL2CapLengthError struct {
	Actual   uint16
	Required uint16
}

func (e *BadL2CapLengthError) Error() string {
	return fmt.Sprintf("bad L2CAP length: have %d, need %d", e.Actual, e.Required)
}

// BadL2CapRejectionReasonError reports a command-reject result field
// with an unrecognized rejection reason.
type BadL2CapRejectionReasonError struct {
	Value uint16
}

func (e *BadL2CapRejectionReasonError) Error() string {
	return fmt.Sprintf("bad L2CAP rejection reason 0x%04X", e.Value)
}

// BadL2CapResponseCodeError reports a connection update response whose
// code byte indicates neither a reject nor a connection parameter
// update response.
type BadL2CapResponseCodeError struct {
	Value byte
}

func (e *BadL2CapResponseCodeError) Error() string {
	return fmt.Sprintf("bad L2CAP connection update response code 0x%02X", e.Value)
}

// BadL2CapResponseResultError reports an accepted connection update
// response whose result is neither updated nor rejected.
type BadL2CapResponseResultError struct {
	Value uint16
}

func (e *BadL2CapResponseResultError) Error() string {
	return fmt.Sprintf("bad L2CAP connection update response result 0x%04X", e.Value)
}

// BadConnectionIntervalError reports a connection update request whose
// interval bounds are out of range or out of order.
type BadConnectionIntervalError struct {
	Min uint16
	Max uint16
}

func (e *BadConnectionIntervalError) Error() string {
	return fmt.Sprintf("bad connection interval: min %d, max %d", e.Min, e.Max)
}

// BadTimeoutMultiplierError reports a connection update request whose
// timeout multiplier is outside 10..3200.
type BadTimeoutMultiplierError struct {
	Value uint16
}

func (e *BadTimeoutMultiplierError) Error() string {
	return fmt.Sprintf("bad timeout multiplier %d", e.Value)
}

// BadSlaveLatencyError reports a slave latency at or above the limit
// derived from the supervision timeout and maximum interval. The limit
// is exclusive.
type BadSlaveLatencyError struct {
	Value uint16
	Limit uint16
}

func (e *BadSlaveLatencyError) Error() string {
	return fmt.Sprintf("bad slave latency %d (limit %d)", e.Value, e.Limit)
}

// BadFindInformationFormatError reports a Find Information Response
// whose format byte names neither the 16-bit nor the 128-bit UUID
// format.
type BadFindInformationFormatError struct {
	Value byte
}

func (e *BadFindInformationFormatError) Error() string {
	return fmt.Sprintf("bad find information response format 0x%02X", e.Value)
}

// BadGattProcedureStatusError reports an unrecognized status byte in
// the GATT Procedure Complete event.
type BadGattProcedureStatusError struct {
	Value byte
}

func (e *BadGattProcedureStatusError) Error() string {
	return fmt.Sprintf("bad GATT procedure status 0x%02X", e.Value)
}

// BadAttRequestOpcodeError reports an unrecognized request opcode in
// the ATT Error Response event.
type BadAttRequestOpcodeError struct {
	Value byte
}

func (e *BadAttRequestOpcodeError) Error() string {
	return fmt.Sprintf("bad ATT request opcode 0x%02X", e.Value)
}

var (
	// ErrRssiUnavailable reports a GAP Device Found event carrying the
	// reserved RSSI sentinel 127, meaning no reading was available.
	ErrRssiUnavailable = errors.New("RSSI unavailable")

	// ErrPartialHandleUUID16Pair reports a Find Information Response in
	// 16-bit format whose pair region is not a multiple of 4 bytes.
	ErrPartialHandleUUID16Pair = errors.New("partial handle-UUID pair (16-bit format)")

	// ErrPartialHandleUUID128Pair reports a Find Information Response
	// in 128-bit format whose pair region is not a multiple of 18
	// bytes.
	ErrPartialHandleUUID128Pair = errors.New("partial handle-UUID pair (128-bit format)")

	// ErrPartialHandleInfoPair reports a Find By Type Value Response
	// ending with a truncated handle pair.
	ErrPartialHandleInfoPair = errors.New("partial handle information pair")

	// ErrPartialHandleValuePair reports a Read By Type Response ending
	// with a truncated handle-value pair.
	ErrPartialHandleValuePair = errors.New("partial handle-value pair")

	// ErrPartialAttributeData reports a Read By Group Type Response
	// ending with a truncated attribute data group.
	ErrPartialAttributeData = errors.New("partial attribute data group")
)
