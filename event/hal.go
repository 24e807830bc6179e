package event

import (
	"fmt"

	"github.com/bluewire/bluenrg/hci"
)

// ResetReason explains why the controller generated the HalInitialized
// event.
type ResetReason uint8

const (
	// ResetNormal means the firmware started properly.
	ResetNormal ResetReason = iota + 1
	// ResetUpdaterAci means updater mode was entered because of an
	// Aci_Updater_Start command.
	ResetUpdaterAci
	// ResetUpdaterBadFlag means updater mode was entered because of a
	// bad BLUE flag.
	ResetUpdaterBadFlag
	// ResetUpdaterPin means updater mode was entered with the IRQ pin.
	ResetUpdaterPin
	// ResetWatchdog means the watchdog reset the controller.
	ResetWatchdog
	// ResetLockup means the controller reset due to lockup.
	ResetLockup
	// ResetBrownout means a brownout reset occurred.
	ResetBrownout
	// ResetCrash means the controller crashed (NMI or hard fault). The
	// extended firmware follows up with a CrashReport event.
	ResetCrash
	// ResetEccError means the reset was caused by an ECC error.
	ResetEccError
)

func (r ResetReason) String() string {
	switch r {
	case ResetNormal:
		return "Normal"
	case ResetUpdaterAci:
		return "UpdaterAci"
	case ResetUpdaterBadFlag:
		return "UpdaterBadFlag"
	case ResetUpdaterPin:
		return "UpdaterPin"
	case ResetWatchdog:
		return "Watchdog"
	case ResetLockup:
		return "Lockup"
	case ResetBrownout:
		return "Brownout"
	case ResetCrash:
		return "Crash"
	case ResetEccError:
		return "EccError"
	}
	return fmt.Sprintf("ResetReason(%d)", uint8(r))
}

func resetReasonFromByte(v byte) (ResetReason, error) {
	if v < 1 || v > 9 {
		return 0, &UnknownResetReasonError{Value: v}
	}
	return ResetReason(v), nil
}

// HalInitialized is generated when the firmware starts, carrying the
// reason for the (re)start.
type HalInitialized struct {
	Reason ResetReason
}

func (HalInitialized) Opcode() Opcode { return OpcodeHalInitialized }

func (d *Decoder) decodeHalInitialized(b []byte) (Event, error) {
	if err := hci.RequireExactLen(b, 3); err != nil {
		return nil, err
	}
	reason, err := resetReasonFromByte(b[2])
	if err != nil {
		return nil, err
	}
	return HalInitialized{Reason: reason}, nil
}

// EventFlags names the event kinds the controller may drop when the
// host reads too slowly. Each defined bit is one HCI or vendor event
// kind.
type EventFlags uint64

const (
	LostDisconnectionComplete EventFlags = 1 << iota
	LostEncryptionChange
	LostReadRemoteVersionComplete
	LostCommandComplete
	LostCommandStatus
	LostHardwareError
	LostNumberOfCompletedPackets
	LostEncryptionKeyRefresh
	LostHalInitialized
	LostGapSetLimitedDiscoverable
	LostGapPairingComplete
	LostGapPassKeyRequest
	LostGapAuthorizationRequest
	LostGapSlaveSecurityInitiated
	LostGapBondLost
	LostGapProcedureComplete
	LostGapAddressNotResolved
	LostL2CapConnectionUpdateResponse
	LostL2CapProcedureTimeout
	LostL2CapConnectionUpdateRequest
	LostGattAttributeModified
	LostGattProcedureTimeout
	LostAttExchangeMtuResponse
	LostAttFindInformationResponse
	LostAttFindByTypeValueResponse
	LostAttReadByTypeResponse
	LostAttReadResponse
	LostAttReadBlobResponse
	LostAttReadMultipleResponse
	LostAttReadByGroupTypeResponse
	LostAttWriteResponse
	LostAttPrepareWriteResponse
	LostAttExecuteWriteResponse
	LostGattIndication
	LostGattNotification
	LostGattProcedureComplete
	LostGattErrorResponse
	LostGattDiscoverOrReadCharacteristicByUUIDResponse
	LostGattWritePermitRequest
	LostGattReadPermitRequest
	LostGattReadMultiplePermitRequest
	LostGattTxPoolAvailable
	LostGattServerRxConfirmation
	LostGattPrepareWritePermitRequest
	LostLinkLayerConnectionComplete
	LostLinkLayerAdvertisingReport
	LostLinkLayerConnectionUpdateComplete
	LostLinkLayerReadRemoteUsedFeatures
	LostLinkLayerLtkRequest

	// lostEventFlagCount is the number of defined flag bits above. Any
	// bit at or beyond this position is illegal in an EventsLost
	// payload.
	lostEventFlagCount = iota
)

const definedEventFlags = EventFlags(1<<lostEventFlagCount) - 1

// Has reports whether every bit in mask is set.
func (f EventFlags) Has(mask EventFlags) bool {
	return f&mask == mask
}

// EventsLost reports the kinds of events the controller had to drop
// because the host did not drain its queue fast enough. Extended
// variant only. This event itself is never lost.
type EventsLost struct {
	Flags EventFlags
}

func (EventsLost) Opcode() Opcode { return OpcodeEventsLost }

func (d *Decoder) decodeEventsLost(b []byte) (Event, error) {
	if d.Variant != VariantExtended {
		return nil, &UnknownEventError{Opcode: uint16(OpcodeEventsLost)}
	}
	if err := hci.RequireExactLen(b, 10); err != nil {
		return nil, err
	}
	bits := u64(b, 2)
	if EventFlags(bits)&^definedEventFlags != 0 {
		return nil, &BadEventFlagsError{Bits: bits}
	}
	return EventsLost{Flags: EventFlags(bits)}, nil
}

// CrashReason refines ResetCrash with the specific fault that brought
// the controller down.
type CrashReason uint8

const (
	// CrashAssertion means an assertion failed.
	CrashAssertion CrashReason = iota
	// CrashNmiFault means the controller hit an NMI fault.
	CrashNmiFault
	// CrashHardFault means the controller hit a hard fault.
	CrashHardFault
)

func (r CrashReason) String() string {
	switch r {
	case CrashAssertion:
		return "Assertion"
	case CrashNmiFault:
		return "NmiFault"
	case CrashHardFault:
		return "HardFault"
	}
	return fmt.Sprintf("CrashReason(%d)", uint8(r))
}

// The vendor documentation disagrees with the vendor SDK on the NMI and
// hard fault encodings: the SDK emits 1 and 2 where the user manual
// says 6 and 7. Both encodings are accepted.
func crashReasonFromByte(v byte) (CrashReason, error) {
	switch v {
	case 0:
		return CrashAssertion, nil
	case 1, 6:
		return CrashNmiFault, nil
	case 2, 7:
		return CrashHardFault, nil
	}
	return 0, &UnknownCrashReasonError{Value: v}
}

// MaxDebugDataLen is the worst-case size of the crash dump tail: the
// 255-byte event ceiling less the 40 fixed bytes of the CrashReport
// event.
const MaxDebugDataLen = 215

// CrashReport carries the fault data the controller captured before
// resetting. It follows HalInitialized when the reset reason is
// ResetCrash. Extended variant only.
type CrashReport struct {
	Reason CrashReason

	// Core registers at the time of the fault.
	SP   uint32
	R0   uint32
	R1   uint32
	R2   uint32
	R3   uint32
	R12  uint32
	LR   uint32
	PC   uint32
	XPSR uint32

	debugDataLen int
	debugData    [MaxDebugDataLen]byte
}

func (CrashReport) Opcode() Opcode { return OpcodeCrashReport }

// DebugData returns the valid portion of the crash dump.
func (e *CrashReport) DebugData() []byte {
	return e.debugData[:e.debugDataLen]
}

func (e *CrashReport) String() string {
	return fmt.Sprintf(
		"CrashReport{reason: %v, sp: %x, r0: %x, r1: %x, r2: %x, r3: %x, r12: %x, lr: %x, pc: %x, xpsr: %x, debug: % x}",
		e.Reason, e.SP, e.R0, e.R1, e.R2, e.R3, e.R12, e.LR, e.PC, e.XPSR, first16(e.DebugData()))
}

func (d *Decoder) decodeCrashReport(b []byte) (Event, error) {
	if d.Variant != VariantExtended {
		return nil, &UnknownEventError{Opcode: uint16(OpcodeCrashReport)}
	}
	if err := hci.RequireMinLen(b, 40); err != nil {
		return nil, err
	}
	debugLen := int(b[39])
	if err := hci.RequireExactLen(b, 40+debugLen); err != nil {
		return nil, err
	}

	reason, err := crashReasonFromByte(b[2])
	if err != nil {
		return nil, err
	}

	e := CrashReport{
		Reason:       reason,
		SP:           u32(b, 3),
		R0:           u32(b, 7),
		R1:           u32(b, 11),
		R2:           u32(b, 15),
		R3:           u32(b, 19),
		R12:          u32(b, 23),
		LR:           u32(b, 27),
		PC:           u32(b, 31),
		XPSR:         u32(b, 35),
		debugDataLen: debugLen,
	}
	copy(e.debugData[:debugLen], b[40:])
	return &e, nil
}

// first16 truncates long payloads for display.
func first16(b []byte) []byte {
	if len(b) > 16 {
		return b[:16]
	}
	return b
}
