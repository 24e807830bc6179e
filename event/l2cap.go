package event

import (
	"fmt"

	"github.com/bluewire/bluenrg/hci"
)

// L2CAP signaling code bytes that may appear in a connection update
// response. [Vol 3, Part A, 4.1]
//
// The inner L2CAP length field sits at offset 7 in the response but at
// offset 6 in the request: the response carries a signaling code byte
// at 5 and an identifier byte at 6, while the request carries only the
// identifier at 5.
const (
	l2capCodeCommandReject            = 0x01
	l2capCodeConnParamUpdateResponse  = 0x13
	l2capConnUpdateRespEventDataLen   = 6
	l2capConnUpdateRespSignalLen      = 2
	l2capConnUpdateReqEventDataLen    = 11
	l2capConnUpdateReqSignalLen       = 8
)

// requireL2CapDataLen checks the event-data length byte every L2CAP
// event carries at offset 4 against the fixed value for that event.
func requireL2CapDataLen(b []byte, want byte) error {
	if b[4] != want {
		return &BadL2CapDataLengthError{Actual: b[4], Required: want}
	}
	return nil
}

// requireL2CapLen checks an inner L2CAP length field against the fixed
// value for that event.
func requireL2CapLen(actual, want uint16) error {
	if actual != want {
		return &BadL2CapLengthError{Actual: actual, Required: want}
	}
	return nil
}

// L2CapRejectionReason explains why the master rejected an L2CAP
// command. [Vol 3, Part A, 4.1]
type L2CapRejectionReason uint8

const (
	// RejectionCommandNotUnderstood means the peer did not understand
	// the command.
	RejectionCommandNotUnderstood L2CapRejectionReason = iota
	// RejectionSignalingMtuExceeded means the signaling packet exceeded
	// the receiver's signaling MTU.
	RejectionSignalingMtuExceeded
	// RejectionInvalidCid means the request named an invalid channel
	// ID.
	RejectionInvalidCid
)

func (r L2CapRejectionReason) String() string {
	switch r {
	case RejectionCommandNotUnderstood:
		return "CommandNotUnderstood"
	case RejectionSignalingMtuExceeded:
		return "SignalingMtuExceeded"
	case RejectionInvalidCid:
		return "InvalidCid"
	}
	return fmt.Sprintf("L2CapRejectionReason(%d)", uint8(r))
}

func l2capRejectionReasonFromWord(v uint16) (L2CapRejectionReason, error) {
	if v > 2 {
		return 0, &BadL2CapRejectionReasonError{Value: v}
	}
	return L2CapRejectionReason(v), nil
}

// L2CapConnectionUpdateResult is the interpreted outcome of a
// connection update response.
type L2CapConnectionUpdateResult uint8

const (
	// L2CapParametersUpdated means the master accepted the request and
	// updated the connection parameters.
	L2CapParametersUpdated L2CapConnectionUpdateResult = iota
	// L2CapParametersRejected means the master answered the request but
	// rejected the proposed parameters.
	L2CapParametersRejected
	// L2CapCommandRejected means the master rejected the command
	// itself; the RejectionReason field explains why.
	L2CapCommandRejected
)

func (r L2CapConnectionUpdateResult) String() string {
	switch r {
	case L2CapParametersUpdated:
		return "ParametersUpdated"
	case L2CapParametersRejected:
		return "ParametersRejected"
	case L2CapCommandRejected:
		return "CommandRejected"
	}
	return fmt.Sprintf("L2CapConnectionUpdateResult(%d)", uint8(r))
}

// L2CapConnectionUpdateResponse is generated when the master responds
// to an L2CAP connection update request.
type L2CapConnectionUpdateResponse struct {
	ConnHandle ConnectionHandle
	Result     L2CapConnectionUpdateResult

	// RejectionReason is valid only when Result is
	// L2CapCommandRejected.
	RejectionReason L2CapRejectionReason
}

func (L2CapConnectionUpdateResponse) Opcode() Opcode { return OpcodeL2CapConnectionUpdateResponse }

func (d *Decoder) decodeL2CapConnectionUpdateResponse(b []byte) (Event, error) {
	if err := hci.RequireExactLen(b, 11); err != nil {
		return nil, err
	}
	if err := requireL2CapDataLen(b, l2capConnUpdateRespEventDataLen); err != nil {
		return nil, err
	}
	if err := requireL2CapLen(u16(b, 7), l2capConnUpdateRespSignalLen); err != nil {
		return nil, err
	}

	e := L2CapConnectionUpdateResponse{ConnHandle: ConnectionHandle(u16(b, 2))}
	result := u16(b, 9)
	switch b[5] {
	case l2capCodeCommandReject:
		reason, err := l2capRejectionReasonFromWord(result)
		if err != nil {
			return nil, err
		}
		e.Result = L2CapCommandRejected
		e.RejectionReason = reason
	case l2capCodeConnParamUpdateResponse:
		switch result {
		case 0x0000:
			e.Result = L2CapParametersUpdated
		case 0x0001:
			e.Result = L2CapParametersRejected
		default:
			return nil, &BadL2CapResponseResultError{Value: result}
		}
	default:
		return nil, &BadL2CapResponseCodeError{Value: b[5]}
	}
	return e, nil
}

// L2CapConnectionUpdateRequest is generated when the slave asks for new
// connection parameters. The application answers with the connection
// parameter update response command, quoting Identifier.
// [Vol 3, Part A, 4.20]
type L2CapConnectionUpdateRequest struct {
	ConnHandle ConnectionHandle

	// Identifier ties the request to the application's response.
	Identifier uint8

	// IntervalMin and IntervalMax bound the requested connection
	// interval in 1.25 ms frames, each within 6..3200 and
	// IntervalMin <= IntervalMax.
	IntervalMin uint16
	IntervalMax uint16

	// SlaveLatency is the number of connection events the slave may
	// skip. It is bounded by the supervision timeout and maximum
	// interval; see slaveLatencyLimit.
	SlaveLatency uint16

	// TimeoutMult scales the supervision timeout in 10 ms units,
	// within 10..3200.
	TimeoutMult uint16
}

func (L2CapConnectionUpdateRequest) Opcode() Opcode { return OpcodeL2CapConnectionUpdateRequest }

func outsideIntervalRange(v uint16) bool {
	return v < 6 || v > 3200
}

// slaveLatencyLimit derives the exclusive upper bound on the slave
// latency:
//
//	connIntervalMax = intervalMax * 1.25 ms
//	connSupervisionTimeout = timeoutMult * 10 ms
//	limit = min(500, connSupervisionTimeout / (2 * connIntervalMax) - 1)
//
// which reduces to the integer expression below. The division floors;
// when the quotient is below 1 the subtraction leaves no valid latency
// at all and the limit clamps to zero.
func slaveLatencyLimit(timeoutMult, intervalMax uint16) uint16 {
	limit := int(4*uint32(timeoutMult)/uint32(intervalMax)) - 1
	if limit < 0 {
		return 0
	}
	if limit > 500 {
		return 500
	}
	return uint16(limit)
}

func (d *Decoder) decodeL2CapConnectionUpdateRequest(b []byte) (Event, error) {
	if err := hci.RequireExactLen(b, 16); err != nil {
		return nil, err
	}
	if err := requireL2CapDataLen(b, l2capConnUpdateReqEventDataLen); err != nil {
		return nil, err
	}
	if err := requireL2CapLen(u16(b, 6), l2capConnUpdateReqSignalLen); err != nil {
		return nil, err
	}

	intervalMin := u16(b, 8)
	intervalMax := u16(b, 10)
	if outsideIntervalRange(intervalMin) || outsideIntervalRange(intervalMax) ||
		intervalMin > intervalMax {
		return nil, &BadConnectionIntervalError{Min: intervalMin, Max: intervalMax}
	}

	timeoutMult := u16(b, 14)
	if timeoutMult < 10 || timeoutMult > 3200 {
		return nil, &BadTimeoutMultiplierError{Value: timeoutMult}
	}

	slaveLatency := u16(b, 12)
	limit := slaveLatencyLimit(timeoutMult, intervalMax)
	if slaveLatency >= limit {
		return nil, &BadSlaveLatencyError{Value: slaveLatency, Limit: limit}
	}

	return L2CapConnectionUpdateRequest{
		ConnHandle:   ConnectionHandle(u16(b, 2)),
		Identifier:   b[5],
		IntervalMin:  intervalMin,
		IntervalMax:  intervalMax,
		SlaveLatency: slaveLatency,
		TimeoutMult:  timeoutMult,
	}, nil
}
