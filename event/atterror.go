package event

import "fmt"

// AttError is an ATT Error Response error code. Every byte value is a
// valid AttError: codes outside the defined set fall in the reserved or
// application ranges and are reported as such by String.
type AttError uint8

const (
	AttErrInvalidHandle                AttError = 0x01
	AttErrReadNotPermitted             AttError = 0x02
	AttErrWriteNotPermitted            AttError = 0x03
	AttErrInvalidPdu                   AttError = 0x04
	AttErrInsufficientAuthentication   AttError = 0x05
	AttErrRequestNotSupported          AttError = 0x06
	AttErrInvalidOffset                AttError = 0x07
	AttErrInsufficientAuthorization    AttError = 0x08
	AttErrPrepareQueueFull             AttError = 0x09
	AttErrAttributeNotFound            AttError = 0x0A
	AttErrAttributeNotLong             AttError = 0x0B
	AttErrInsufficientEncryptionKeySz  AttError = 0x0C
	AttErrInvalidAttributeValueLength  AttError = 0x0D
	AttErrUnlikelyError                AttError = 0x0E
	AttErrInsufficientEncryption       AttError = 0x0F
	AttErrUnsupportedGroupType         AttError = 0x10
	AttErrInsufficientResources        AttError = 0x11
	AttErrWriteRequestRejected         AttError = 0xFC
	AttErrCccdImproperlyConfigured     AttError = 0xFD
	AttErrProcedureAlreadyInProgress   AttError = 0xFE
	AttErrOutOfRange                   AttError = 0xFF
)

// IsReserved reports whether the code lies in a range the Bluetooth
// specification reserves for future use.
func (e AttError) IsReserved() bool {
	return (e >= 0x12 && e <= 0x7F) || (e >= 0xA0 && e <= 0xFB)
}

// IsApplicationError reports whether the code lies in the range set
// aside for application-defined errors.
func (e AttError) IsApplicationError() bool {
	return e >= 0x80 && e <= 0x9F
}

func (e AttError) String() string {
	switch e {
	case AttErrInvalidHandle:
		return "Invalid Handle"
	case AttErrReadNotPermitted:
		return "Read Not Permitted"
	case AttErrWriteNotPermitted:
		return "Write Not Permitted"
	case AttErrInvalidPdu:
		return "Invalid PDU"
	case AttErrInsufficientAuthentication:
		return "Insufficient Authentication"
	case AttErrRequestNotSupported:
		return "Request Not Supported"
	case AttErrInvalidOffset:
		return "Invalid Offset"
	case AttErrInsufficientAuthorization:
		return "Insufficient Authorization"
	case AttErrPrepareQueueFull:
		return "Prepare Queue Full"
	case AttErrAttributeNotFound:
		return "Attribute Not Found"
	case AttErrAttributeNotLong:
		return "Attribute Not Long"
	case AttErrInsufficientEncryptionKeySz:
		return "Insufficient Encryption Key Size"
	case AttErrInvalidAttributeValueLength:
		return "Invalid Attribute Value Length"
	case AttErrUnlikelyError:
		return "Unlikely Error"
	case AttErrInsufficientEncryption:
		return "Insufficient Encryption"
	case AttErrUnsupportedGroupType:
		return "Unsupported Group Type"
	case AttErrInsufficientResources:
		return "Insufficient Resources"
	case AttErrWriteRequestRejected:
		return "Write Request Rejected"
	case AttErrCccdImproperlyConfigured:
		return "CCCD Improperly Configured"
	case AttErrProcedureAlreadyInProgress:
		return "Procedure Already In Progress"
	case AttErrOutOfRange:
		return "Out Of Range"
	}
	if e.IsApplicationError() {
		return fmt.Sprintf("Application Error(%#02x)", uint8(e))
	}
	return fmt.Sprintf("Reserved(%#02x)", uint8(e))
}

// AttRequest is an ATT request opcode, as echoed in an Error Response.
type AttRequest uint8

const (
	AttReqErrorResponse           AttRequest = 0x01
	AttReqExchangeMtuRequest      AttRequest = 0x02
	AttReqExchangeMtuResponse     AttRequest = 0x03
	AttReqFindInformationRequest  AttRequest = 0x04
	AttReqFindInformationResponse AttRequest = 0x05
	AttReqFindByTypeValueRequest  AttRequest = 0x06
	AttReqFindByTypeValueResponse AttRequest = 0x07
	AttReqReadByTypeRequest       AttRequest = 0x08
	AttReqReadByTypeResponse      AttRequest = 0x09
	AttReqReadRequest             AttRequest = 0x0A
	AttReqReadResponse            AttRequest = 0x0B
	AttReqReadBlobRequest         AttRequest = 0x0C
	AttReqReadBlobResponse        AttRequest = 0x0D
	AttReqReadMultipleRequest     AttRequest = 0x0E
	AttReqReadMultipleResponse    AttRequest = 0x0F
	AttReqReadByGroupTypeRequest  AttRequest = 0x10
	AttReqReadByGroupTypeResponse AttRequest = 0x11
	AttReqWriteRequest            AttRequest = 0x12
	AttReqWriteResponse           AttRequest = 0x13
	AttReqPrepareWriteRequest     AttRequest = 0x16
	AttReqPrepareWriteResponse    AttRequest = 0x17
	AttReqExecuteWriteRequest     AttRequest = 0x18
	AttReqExecuteWriteResponse    AttRequest = 0x19
	AttReqHandleValueNotification AttRequest = 0x1B
	AttReqHandleValueIndication   AttRequest = 0x1D
	AttReqHandleValueConfirmation AttRequest = 0x1E
	AttReqWriteCommand            AttRequest = 0x52
	AttReqSignedWriteCommand      AttRequest = 0xD2
)

func attRequestFromByte(v byte) (AttRequest, error) {
	switch {
	case v >= 0x01 && v <= 0x13:
		return AttRequest(v), nil
	case v >= 0x16 && v <= 0x19:
		return AttRequest(v), nil
	case v == 0x1B || v == 0x1D || v == 0x1E:
		return AttRequest(v), nil
	case v == 0x52 || v == 0xD2:
		return AttRequest(v), nil
	}
	return 0, &BadAttRequestOpcodeError{Value: v}
}
