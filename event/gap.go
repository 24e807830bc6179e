package event

import (
	"fmt"

	"github.com/bluewire/bluenrg/hci"
)

// GapPairingStatus is the outcome reported by GapPairingComplete.
type GapPairingStatus uint8

const (
	// PairingSuccess means pairing with the remote device succeeded.
	PairingSuccess GapPairingStatus = iota
	// PairingTimeout means the SMP timeout elapsed; no further SMP
	// commands are processed until reconnection.
	PairingTimeout
	// PairingFailed means pairing with the remote device failed.
	PairingFailed
)

func (s GapPairingStatus) String() string {
	switch s {
	case PairingSuccess:
		return "Success"
	case PairingTimeout:
		return "Timeout"
	case PairingFailed:
		return "Failed"
	}
	return fmt.Sprintf("GapPairingStatus(%d)", uint8(s))
}

func gapPairingStatusFromByte(v byte) (GapPairingStatus, error) {
	if v > 2 {
		return 0, &BadGapPairingStatusError{Value: v}
	}
	return GapPairingStatus(v), nil
}

// GapPairingComplete is generated when the pairing process completes,
// fails, or times out.
type GapPairingComplete struct {
	ConnHandle ConnectionHandle
	Status     GapPairingStatus
}

func (GapPairingComplete) Opcode() Opcode { return OpcodeGapPairingComplete }

func (d *Decoder) decodeGapPairingComplete(b []byte) (Event, error) {
	if err := hci.RequireExactLen(b, 5); err != nil {
		return nil, err
	}
	status, err := gapPairingStatusFromByte(b[4])
	if err != nil {
		return nil, err
	}
	return GapPairingComplete{
		ConnHandle: ConnectionHandle(u16(b, 2)),
		Status:     status,
	}, nil
}

// GapDeviceFoundType is the kind of advertising packet that triggered
// a GapDeviceFound event.
type GapDeviceFoundType uint8

const (
	// FoundAdvertisement is connectable undirected advertising.
	FoundAdvertisement GapDeviceFoundType = iota
	// FoundDirectAdvertisement is connectable directed advertising.
	FoundDirectAdvertisement
	// FoundScan is scannable undirected advertising.
	FoundScan
	// FoundNonConnectableAdvertisement is non connectable undirected
	// advertising.
	FoundNonConnectableAdvertisement
	// FoundScanResponse is a scan response.
	FoundScanResponse
)

func (t GapDeviceFoundType) String() string {
	switch t {
	case FoundAdvertisement:
		return "Advertisement"
	case FoundDirectAdvertisement:
		return "DirectAdvertisement"
	case FoundScan:
		return "Scan"
	case FoundNonConnectableAdvertisement:
		return "NonConnectableAdvertisement"
	case FoundScanResponse:
		return "ScanResponse"
	}
	return fmt.Sprintf("GapDeviceFoundType(%d)", uint8(t))
}

func gapDeviceFoundTypeFromByte(v byte) (GapDeviceFoundType, error) {
	if v > 4 {
		return 0, &BadGapDeviceFoundEventError{Value: v}
	}
	return GapDeviceFoundType(v), nil
}

// BdAddrBuffer is a raw 6-byte Bluetooth device address.
type BdAddrBuffer [6]byte

// BdAddrType distinguishes public from random device addresses.
type BdAddrType uint8

const (
	// BdAddrPublic is a public device address.
	BdAddrPublic BdAddrType = iota
	// BdAddrRandom is a random device address.
	BdAddrRandom
)

func (t BdAddrType) String() string {
	switch t {
	case BdAddrPublic:
		return "Public"
	case BdAddrRandom:
		return "Random"
	}
	return fmt.Sprintf("BdAddrType(%d)", uint8(t))
}

// BdAddr is a typed Bluetooth device address.
type BdAddr struct {
	Type BdAddrType
	Addr BdAddrBuffer
}

func bdAddrFromBytes(typ byte, addr BdAddrBuffer) (BdAddr, error) {
	if typ > 1 {
		return BdAddr{}, &BadGapBdAddrTypeError{Value: typ}
	}
	return BdAddr{Type: BdAddrType(typ), Addr: addr}, nil
}

// MaxAdvertisingDataLen is the longest advertising or scan response
// payload a GapDeviceFound event can carry.
const MaxAdvertisingDataLen = 31

// rssiUnavailable is the reserved RSSI code meaning no reading was
// available. Real readings fall in -127..20.
const rssiUnavailable = 127

// GapDeviceFound is generated when a device is discovered during one of
// the GAP scanning procedures.
type GapDeviceFound struct {
	Event GapDeviceFoundType
	Addr  BdAddr

	dataLen int
	data    [MaxAdvertisingDataLen]byte

	// RSSI of the received packet, in the range -127..20.
	RSSI int8
}

func (GapDeviceFound) Opcode() Opcode { return OpcodeGapDeviceFound }

// Data returns the advertising or scan response payload.
func (e *GapDeviceFound) Data() []byte {
	return e.data[:e.dataLen]
}

func (e *GapDeviceFound) String() string {
	return fmt.Sprintf("GapDeviceFound{event: %v, addr: %v % x, data: % x, rssi: %d}",
		e.Event, e.Addr.Type, e.Addr.Addr[:], first16(e.Data()), e.RSSI)
}

func (d *Decoder) decodeGapDeviceFound(b []byte) (Event, error) {
	if err := hci.RequireMinLen(b, 12); err != nil {
		return nil, err
	}
	dataLen := int(b[10])
	if dataLen > MaxAdvertisingDataLen {
		return nil, &BadAdvertisingDataLengthError{Value: b[10]}
	}
	if err := hci.RequireExactLen(b, 12+dataLen); err != nil {
		return nil, err
	}

	rssi := int8(b[len(b)-1])
	if rssi == rssiUnavailable {
		return nil, ErrRssiUnavailable
	}

	typ, err := gapDeviceFoundTypeFromByte(b[2])
	if err != nil {
		return nil, err
	}

	var raw BdAddrBuffer
	copy(raw[:], b[4:10])
	addr, err := bdAddrFromBytes(b[3], raw)
	if err != nil {
		return nil, err
	}

	e := GapDeviceFound{
		Event:   typ,
		Addr:    addr,
		dataLen: dataLen,
		RSSI:    rssi,
	}
	copy(e.data[:dataLen], b[11:len(b)-1])
	return &e, nil
}

// GapProcedure names the procedure reported by GapProcedureComplete.
type GapProcedure uint8

const (
	ProcedureLimitedDiscovery GapProcedure = iota + 1
	ProcedureGeneralDiscovery
	ProcedureNameDiscovery
	ProcedureAutoConnectionEstablishment
	ProcedureGeneralConnectionEstablishment
	ProcedureSelectiveConnectionEstablishment
	ProcedureDirectConnectionEstablishment
)

func (p GapProcedure) String() string {
	switch p {
	case ProcedureLimitedDiscovery:
		return "LimitedDiscovery"
	case ProcedureGeneralDiscovery:
		return "GeneralDiscovery"
	case ProcedureNameDiscovery:
		return "NameDiscovery"
	case ProcedureAutoConnectionEstablishment:
		return "AutoConnectionEstablishment"
	case ProcedureGeneralConnectionEstablishment:
		return "GeneralConnectionEstablishment"
	case ProcedureSelectiveConnectionEstablishment:
		return "SelectiveConnectionEstablishment"
	case ProcedureDirectConnectionEstablishment:
		return "DirectConnectionEstablishment"
	}
	return fmt.Sprintf("GapProcedure(%d)", uint8(p))
}

// GapProcedureStatus is the outcome of a completed GAP procedure.
type GapProcedureStatus uint8

const (
	// ProcedureSuccess is BLE status success.
	ProcedureSuccess GapProcedureStatus = iota
	// ProcedureFailed is BLE status failed.
	ProcedureFailed
	// ProcedureAuthFailure means the procedure failed its
	// authentication requirements.
	ProcedureAuthFailure
)

func (s GapProcedureStatus) String() string {
	switch s {
	case ProcedureSuccess:
		return "Success"
	case ProcedureFailed:
		return "Failed"
	case ProcedureAuthFailure:
		return "AuthFailure"
	}
	return fmt.Sprintf("GapProcedureStatus(%d)", uint8(s))
}

func gapProcedureStatusFromByte(v byte) (GapProcedureStatus, error) {
	switch v {
	case 0x00:
		return ProcedureSuccess, nil
	case 0x41:
		return ProcedureFailed, nil
	case 0x05:
		return ProcedureAuthFailure, nil
	}
	return 0, &BadGapProcedureStatusError{Value: v}
}

// MaxNameLen is the longest device name a name discovery procedure can
// return.
const MaxNameLen = 248

// GapProcedureComplete is generated when a GAP procedure started by the
// upper layers terminates. Two procedures carry extra payload: name
// discovery returns the peer name and general connection establishment
// returns the reconnection address.
type GapProcedureComplete struct {
	Procedure GapProcedure
	Status    GapProcedureStatus

	// ReconnectionAddress is valid only for
	// ProcedureGeneralConnectionEstablishment.
	ReconnectionAddress BdAddrBuffer

	nameLen int
	name    [MaxNameLen]byte
}

func (GapProcedureComplete) Opcode() Opcode { return OpcodeGapProcedureComplete }

// Name returns the discovered device name. It is empty unless the
// procedure is ProcedureNameDiscovery.
func (e *GapProcedureComplete) Name() []byte {
	return e.name[:e.nameLen]
}

func (d *Decoder) decodeGapProcedureComplete(b []byte) (Event, error) {
	if err := hci.RequireMinLen(b, 4); err != nil {
		return nil, err
	}

	var e GapProcedureComplete
	switch b[2] {
	case 0x01:
		e.Procedure = ProcedureLimitedDiscovery
	case 0x02:
		e.Procedure = ProcedureGeneralDiscovery
	case 0x04:
		if err := hci.RequireMinLen(b, 5); err != nil {
			return nil, err
		}
		if len(b) > 4+MaxNameLen {
			return nil, &BadNameLengthError{Value: len(b) - 4}
		}
		e.Procedure = ProcedureNameDiscovery
		e.nameLen = len(b) - 4
		copy(e.name[:e.nameLen], b[4:])
	case 0x08:
		e.Procedure = ProcedureAutoConnectionEstablishment
	case 0x10:
		if err := hci.RequireExactLen(b, 10); err != nil {
			return nil, err
		}
		e.Procedure = ProcedureGeneralConnectionEstablishment
		copy(e.ReconnectionAddress[:], b[4:10])
	case 0x20:
		e.Procedure = ProcedureSelectiveConnectionEstablishment
	case 0x40:
		e.Procedure = ProcedureDirectConnectionEstablishment
	default:
		return nil, &BadGapProcedureError{Value: b[2]}
	}

	status, err := gapProcedureStatusFromByte(b[3])
	if err != nil {
		return nil, err
	}
	e.Status = status
	return &e, nil
}

// GapReconnectionAddress reports the reconnection address generated
// during the general connection establishment procedure. Standard
// variant only; the extended firmware reuses the opcode for
// GapAddressNotResolved.
type GapReconnectionAddress struct {
	Address BdAddrBuffer
}

func (GapReconnectionAddress) Opcode() Opcode { return OpcodeGapAddressResolution }

func decodeGapReconnectionAddress(b []byte) (Event, error) {
	if err := hci.RequireExactLen(b, 8); err != nil {
		return nil, err
	}
	var e GapReconnectionAddress
	copy(e.Address[:], b[2:])
	return e, nil
}
