package event

import (
	"fmt"

	"github.com/bluewire/bluenrg/hci"
)

// Worst-case payload capacities, derived from the 255-byte maximum HCI
// event size less each event's fixed header.
const (
	// MaxAttributeLen bounds the attribute data in GattAttributeModified
	// events and the value in GATT indications and notifications.
	MaxAttributeLen = 248

	// MaxHandleUUID16Pairs and MaxHandleUUID128Pairs bound the pair
	// count in a Find Information Response. Pairs of the two formats
	// are never mixed in one packet; 6 header bytes precede the pairs.
	MaxHandleUUID16Pairs  = 62
	MaxHandleUUID128Pairs = 13

	// MaxHandleInfoPairs bounds the pair count in a Find By Type Value
	// Response. 5 header bytes precede the pairs.
	MaxHandleInfoPairs = 62

	// MaxHandleValuePairsLen bounds the raw handle-value region of a
	// Read By Type Response and the attribute-data region of a Read By
	// Group Type Response.
	MaxHandleValuePairsLen = 249

	// MaxReadResponseLen bounds the value in a Read, Read Blob or Read
	// Multiple Response.
	MaxReadResponseLen = 250

	// MaxPrepareWriteValueLen bounds the partial value echoed by a
	// Prepare Write Response.
	MaxPrepareWriteValueLen = 246
)

// GattAttributeModified is generated when a client modifies an
// attribute on the local server. Under the extended firmware the event
// also reports the value offset and whether further fragments follow.
type GattAttributeModified struct {
	ConnHandle ConnectionHandle
	AttrHandle AttributeHandle

	// Offset of the reported fragment inside the attribute value.
	// Always zero under the standard firmware.
	Offset int

	// Continued is set when more GattAttributeModified events follow
	// with the remaining value. Always false under the standard
	// firmware.
	Continued bool

	dataLen int
	data    [MaxAttributeLen]byte
}

func (GattAttributeModified) Opcode() Opcode { return OpcodeGattAttributeModified }

// Data returns the reported attribute value fragment.
func (e *GattAttributeModified) Data() []byte {
	return e.data[:e.dataLen]
}

func (e *GattAttributeModified) String() string {
	return fmt.Sprintf("GattAttributeModified{conn: %#04x, attr: %#04x, offset: %d, continued: %t, data: % x}",
		uint16(e.ConnHandle), uint16(e.AttrHandle), e.Offset, e.Continued, first16(e.Data()))
}

func (d *Decoder) decodeGattAttributeModified(b []byte) (Event, error) {
	header := 7
	if d.Variant == VariantExtended {
		header = 9
	}
	if err := hci.RequireMinLen(b, header); err != nil {
		return nil, err
	}
	dataLen := int(b[6])
	if err := hci.RequireExactLen(b, header+dataLen); err != nil {
		return nil, err
	}

	e := GattAttributeModified{
		ConnHandle: ConnectionHandle(u16(b, 2)),
		AttrHandle: AttributeHandle(u16(b, 4)),
		dataLen:    dataLen,
	}
	if d.Variant == VariantExtended {
		// The 16-bit offset field packs a 15-bit offset with a
		// continuation flag in the high bit.
		offsetField := u16(b, 7)
		e.Offset = int(offsetField & 0x7FFF)
		e.Continued = offsetField&0x8000 != 0
	}
	copy(e.data[:dataLen], b[header:])
	return &e, nil
}

// AttExchangeMtuResponse is generated in response to an Exchange MTU
// request.
type AttExchangeMtuResponse struct {
	ConnHandle ConnectionHandle

	// ServerRxMtu is the attribute server's receive MTU.
	ServerRxMtu int
}

func (AttExchangeMtuResponse) Opcode() Opcode { return OpcodeAttExchangeMtuResponse }

func (d *Decoder) decodeAttExchangeMtuResponse(b []byte) (Event, error) {
	if err := hci.RequireExactLen(b, 7); err != nil {
		return nil, err
	}
	return AttExchangeMtuResponse{
		ConnHandle:  ConnectionHandle(u16(b, 2)),
		ServerRxMtu: int(u16(b, 5)),
	}, nil
}

// UUID16 is a 16-bit attribute UUID.
type UUID16 uint16

// UUID128 is a full 128-bit attribute UUID.
type UUID128 [16]byte

// UUIDFormat selects which of the two handle-UUID pair layouts a Find
// Information Response uses. The two formats are never mixed in one
// event.
type UUIDFormat uint8

const (
	// UUIDFormat16 means the pairs carry 16-bit UUIDs (stride 4).
	UUIDFormat16 UUIDFormat = 1
	// UUIDFormat128 means the pairs carry 128-bit UUIDs (stride 18).
	UUIDFormat128 UUIDFormat = 2
)

// HandleUUID16Pair is one handle-UUID pair in 16-bit format.
type HandleUUID16Pair struct {
	Handle AttributeHandle
	UUID   UUID16
}

// HandleUUID128Pair is one handle-UUID pair in 128-bit format.
type HandleUUID128Pair struct {
	Handle AttributeHandle
	UUID   UUID128
}

// AttFindInformationResponse is generated in response to a Find
// Information Request. The response carries complete handle-UUID pairs
// in ascending handle order, all in a single format.
type AttFindInformationResponse struct {
	ConnHandle ConnectionHandle

	format   UUIDFormat
	count    int
	pairs16  [MaxHandleUUID16Pairs]HandleUUID16Pair
	pairs128 [MaxHandleUUID128Pairs]HandleUUID128Pair
}

func (AttFindInformationResponse) Opcode() Opcode { return OpcodeAttFindInformationResponse }

// Format reports which UUID width this response used.
func (e *AttFindInformationResponse) Format() UUIDFormat { return e.format }

// Count reports the number of handle-UUID pairs in the response.
func (e *AttFindInformationResponse) Count() int { return e.count }

// UUID16Pairs returns an iterator over the pairs of a 16-bit format
// response. For a 128-bit format response the iterator is empty.
func (e *AttFindInformationResponse) UUID16Pairs() HandleUUID16PairIterator {
	it := HandleUUID16PairIterator{pairs: &e.pairs16}
	if e.format == UUIDFormat16 {
		it.count = e.count
	}
	return it
}

// UUID128Pairs returns an iterator over the pairs of a 128-bit format
// response. For a 16-bit format response the iterator is empty.
func (e *AttFindInformationResponse) UUID128Pairs() HandleUUID128PairIterator {
	it := HandleUUID128PairIterator{pairs: &e.pairs128}
	if e.format == UUIDFormat128 {
		it.count = e.count
	}
	return it
}

// HandleUUID16PairIterator walks the valid pairs of a 16-bit format
// response in order. Obtain a fresh iterator to restart.
type HandleUUID16PairIterator struct {
	pairs *[MaxHandleUUID16Pairs]HandleUUID16Pair
	count int
	next  int
}

// Next returns the next pair, or false once all valid pairs have been
// yielded.
func (it *HandleUUID16PairIterator) Next() (HandleUUID16Pair, bool) {
	if it.next >= it.count {
		return HandleUUID16Pair{}, false
	}
	p := it.pairs[it.next]
	it.next++
	return p, true
}

// HandleUUID128PairIterator walks the valid pairs of a 128-bit format
// response in order. Obtain a fresh iterator to restart.
type HandleUUID128PairIterator struct {
	pairs *[MaxHandleUUID128Pairs]HandleUUID128Pair
	count int
	next  int
}

// Next returns the next pair, or false once all valid pairs have been
// yielded.
func (it *HandleUUID128PairIterator) Next() (HandleUUID128Pair, bool) {
	if it.next >= it.count {
		return HandleUUID128Pair{}, false
	}
	p := it.pairs[it.next]
	it.next++
	return p, true
}

func (d *Decoder) decodeAttFindInformationResponse(b []byte) (Event, error) {
	if err := hci.RequireMinLen(b, 6); err != nil {
		return nil, err
	}
	dataLen := int(b[4])
	if err := hci.RequireExactLen(b, 5+dataLen); err != nil {
		return nil, err
	}

	e := AttFindInformationResponse{ConnHandle: ConnectionHandle(u16(b, 2))}
	pairs := b[6:]
	switch b[5] {
	case byte(UUIDFormat16):
		const stride = 4
		if len(pairs)%stride != 0 {
			return nil, ErrPartialHandleUUID16Pair
		}
		e.format = UUIDFormat16
		e.count = len(pairs) / stride
		for i := 0; i < e.count; i++ {
			e.pairs16[i] = HandleUUID16Pair{
				Handle: AttributeHandle(u16(pairs, i*stride)),
				UUID:   UUID16(u16(pairs, i*stride+2)),
			}
		}
	case byte(UUIDFormat128):
		const stride = 18
		if len(pairs)%stride != 0 {
			return nil, ErrPartialHandleUUID128Pair
		}
		e.format = UUIDFormat128
		e.count = len(pairs) / stride
		for i := 0; i < e.count; i++ {
			e.pairs128[i].Handle = AttributeHandle(u16(pairs, i*stride))
			copy(e.pairs128[i].UUID[:], pairs[i*stride+2:(i+1)*stride])
		}
	default:
		return nil, &BadFindInformationFormatError{Value: b[5]}
	}
	return &e, nil
}

// HandleInfoPair is one entry of the Handles Information List in a Find
// By Type Value Response.
type HandleInfoPair struct {
	Attribute AttributeHandle
	GroupEnd  GroupEndHandle
}

// AttFindByTypeValueResponse is generated in response to a Find By Type
// Value Request.
type AttFindByTypeValueResponse struct {
	ConnHandle ConnectionHandle

	count int
	pairs [MaxHandleInfoPairs]HandleInfoPair
}

func (AttFindByTypeValueResponse) Opcode() Opcode { return OpcodeAttFindByTypeValueResponse }

// Count reports the number of handle pairs in the response.
func (e *AttFindByTypeValueResponse) Count() int { return e.count }

// HandlePairs returns an iterator over the Handles Information List.
func (e *AttFindByTypeValueResponse) HandlePairs() HandleInfoPairIterator {
	return HandleInfoPairIterator{event: e}
}

// HandleInfoPairIterator walks the valid handle pairs of a Find By Type
// Value Response in order. Obtain a fresh iterator to restart.
type HandleInfoPairIterator struct {
	event *AttFindByTypeValueResponse
	next  int
}

// Next returns the next pair, or false once all valid pairs have been
// yielded.
func (it *HandleInfoPairIterator) Next() (HandleInfoPair, bool) {
	if it.next >= it.event.count {
		return HandleInfoPair{}, false
	}
	p := it.event.pairs[it.next]
	it.next++
	return p, true
}

func (d *Decoder) decodeAttFindByTypeValueResponse(b []byte) (Event, error) {
	if err := hci.RequireMinLen(b, 5); err != nil {
		return nil, err
	}
	dataLen := int(b[4])
	if err := hci.RequireExactLen(b, 5+dataLen); err != nil {
		return nil, err
	}

	const stride = 4
	pairs := b[5:]
	if len(pairs)%stride != 0 {
		return nil, ErrPartialHandleInfoPair
	}

	e := AttFindByTypeValueResponse{
		ConnHandle: ConnectionHandle(u16(b, 2)),
		count:      len(pairs) / stride,
	}
	for i := 0; i < e.count; i++ {
		e.pairs[i] = HandleInfoPair{
			Attribute: AttributeHandle(u16(pairs, i*stride)),
			GroupEnd:  GroupEndHandle(u16(pairs, i*stride+2)),
		}
	}
	return &e, nil
}

// HandleValuePair is one entry of a Read By Type Response. Value
// aliases storage owned by the event and stays valid as long as the
// event does.
type HandleValuePair struct {
	Handle AttributeHandle
	Value  []byte
}

// AttReadByTypeResponse is generated in response to a Read By Type
// Request. All handle-value pairs in one response share a single value
// length.
type AttReadByTypeResponse struct {
	ConnHandle ConnectionHandle

	dataLen  int
	valueLen int
	buf      [MaxHandleValuePairsLen]byte
}

func (AttReadByTypeResponse) Opcode() Opcode { return OpcodeAttReadByTypeResponse }

// HandleValuePairs returns an iterator over the handle-value pairs.
func (e *AttReadByTypeResponse) HandleValuePairs() HandleValuePairIterator {
	return HandleValuePairIterator{event: e}
}

// HandleValuePairIterator walks the valid handle-value pairs of a Read
// By Type Response in order. Obtain a fresh iterator to restart.
type HandleValuePairIterator struct {
	event *AttReadByTypeResponse
	index int
}

// Next returns the next pair, or false once all valid pairs have been
// yielded.
func (it *HandleValuePairIterator) Next() (HandleValuePair, bool) {
	e := it.event
	if it.index >= e.dataLen {
		return HandleValuePair{}, false
	}
	handleIndex := it.index
	valueIndex := handleIndex + 2
	it.index += 2 + e.valueLen
	return HandleValuePair{
		Handle: AttributeHandle(u16(e.buf[:], handleIndex)),
		Value:  e.buf[valueIndex:it.index],
	}, true
}

func (d *Decoder) decodeAttReadByTypeResponse(b []byte) (Event, error) {
	if err := hci.RequireMinLen(b, 6); err != nil {
		return nil, err
	}
	dataLen := int(b[4])
	if err := hci.RequireExactLen(b, 5+dataLen); err != nil {
		return nil, err
	}

	// The pair length counts the 2-byte handle plus the fixed value
	// length shared by every pair in the response.
	pairLen := int(b[5])
	region := b[6:]
	if pairLen < 2 || len(region)%pairLen != 0 {
		return nil, ErrPartialHandleValuePair
	}

	e := AttReadByTypeResponse{
		ConnHandle: ConnectionHandle(u16(b, 2)),
		dataLen:    len(region),
		valueLen:   pairLen - 2,
	}
	copy(e.buf[:], region)
	return &e, nil
}

// AttReadResponse is generated in response to a Read Request, a Read
// Blob Request, or a Read Multiple Request; the opcode distinguishes
// which.
type AttReadResponse struct {
	ConnHandle ConnectionHandle

	op       Opcode
	valueLen int
	value    [MaxReadResponseLen]byte
}

func (e *AttReadResponse) Opcode() Opcode { return e.op }

// Value returns the attribute value carried by the response. For a
// blob response this is the partial value starting at the requested
// offset; for a multiple response it is the concatenated set of
// requested values.
func (e *AttReadResponse) Value() []byte {
	return e.value[:e.valueLen]
}

func (e *AttReadResponse) String() string {
	return fmt.Sprintf("AttReadResponse{conn: %#04x, value: % x}",
		uint16(e.ConnHandle), first16(e.Value()))
}

func decodeReadResponse(b []byte, op Opcode) (Event, error) {
	if err := hci.RequireMinLen(b, 5); err != nil {
		return nil, err
	}
	dataLen := int(b[4])
	if err := hci.RequireExactLen(b, 5+dataLen); err != nil {
		return nil, err
	}

	e := AttReadResponse{
		ConnHandle: ConnectionHandle(u16(b, 2)),
		op:         op,
		valueLen:   dataLen,
	}
	copy(e.value[:dataLen], b[5:])
	return &e, nil
}

func (d *Decoder) decodeAttReadResponse(b []byte) (Event, error) {
	return decodeReadResponse(b, OpcodeAttReadResponse)
}

func (d *Decoder) decodeAttReadBlobResponse(b []byte) (Event, error) {
	return decodeReadResponse(b, OpcodeAttReadBlobResponse)
}

func (d *Decoder) decodeAttReadMultipleResponse(b []byte) (Event, error) {
	return decodeReadResponse(b, OpcodeAttReadMultipleResponse)
}

// AttributeData is one attribute data group of a Read By Group Type
// Response. Value aliases storage owned by the event.
type AttributeData struct {
	AttributeHandle AttributeHandle
	GroupEndHandle  GroupEndHandle
	Value           []byte
}

// AttReadByGroupTypeResponse is generated in response to a Read By
// Group Type Request. Each attribute data group repeats the attribute
// handle, the group end handle and the group value.
type AttReadByGroupTypeResponse struct {
	ConnHandle ConnectionHandle

	dataLen  int
	groupLen int
	buf      [MaxHandleValuePairsLen]byte
}

func (AttReadByGroupTypeResponse) Opcode() Opcode { return OpcodeAttReadByGroupTypeResponse }

// AttributeData returns an iterator over the attribute data groups.
func (e *AttReadByGroupTypeResponse) AttributeData() AttributeDataIterator {
	return AttributeDataIterator{event: e}
}

// AttributeDataIterator walks the valid attribute data groups of a
// Read By Group Type Response in order. Obtain a fresh iterator to
// restart.
type AttributeDataIterator struct {
	event *AttReadByGroupTypeResponse
	next  int
}

// Next returns the next group, or false once all valid groups have
// been yielded.
func (it *AttributeDataIterator) Next() (AttributeData, bool) {
	e := it.event
	if it.next >= e.dataLen {
		return AttributeData{}, false
	}
	handleIndex := it.next
	groupEndIndex := handleIndex + 2
	valueIndex := groupEndIndex + 2
	it.next += e.groupLen
	return AttributeData{
		AttributeHandle: AttributeHandle(u16(e.buf[:], handleIndex)),
		GroupEndHandle:  GroupEndHandle(u16(e.buf[:], groupEndIndex)),
		Value:           e.buf[valueIndex:it.next],
	}, true
}

func (d *Decoder) decodeAttReadByGroupTypeResponse(b []byte) (Event, error) {
	if err := hci.RequireMinLen(b, 6); err != nil {
		return nil, err
	}
	dataLen := int(b[4])
	if err := hci.RequireExactLen(b, 5+dataLen); err != nil {
		return nil, err
	}

	// The event data length counts every byte after offset 4,
	// including the group-length byte at offset 5, so the repeated
	// region is exactly the dataLen-1 bytes from offset 6. Each group
	// carries the two 2-byte handles before its value.
	groupLen := int(b[5])
	region := b[6:]
	if groupLen < 4 || len(region)%groupLen != 0 {
		return nil, ErrPartialAttributeData
	}

	e := AttReadByGroupTypeResponse{
		ConnHandle: ConnectionHandle(u16(b, 2)),
		dataLen:    len(region),
		groupLen:   groupLen,
	}
	copy(e.buf[:], region)
	return &e, nil
}

// AttPrepareWriteResponse is generated in response to a Prepare Write
// Request, echoing the queued fragment.
type AttPrepareWriteResponse struct {
	ConnHandle ConnectionHandle
	AttrHandle AttributeHandle

	// Offset of the first octet to be written.
	Offset int

	valueLen int
	value    [MaxPrepareWriteValueLen]byte
}

func (AttPrepareWriteResponse) Opcode() Opcode { return OpcodeAttPrepareWriteResponse }

// Value returns the partial attribute value to be written.
func (e *AttPrepareWriteResponse) Value() []byte {
	return e.value[:e.valueLen]
}

func (d *Decoder) decodeAttPrepareWriteResponse(b []byte) (Event, error) {
	if err := hci.RequireMinLen(b, 9); err != nil {
		return nil, err
	}
	dataLen := int(b[4])
	if err := hci.RequireExactLen(b, 5+dataLen); err != nil {
		return nil, err
	}

	valueLen := dataLen - 4
	e := AttPrepareWriteResponse{
		ConnHandle: ConnectionHandle(u16(b, 2)),
		AttrHandle: AttributeHandle(u16(b, 5)),
		Offset:     int(u16(b, 7)),
		valueLen:   valueLen,
	}
	copy(e.value[:valueLen], b[9:])
	return &e, nil
}

// AttributeValue carries an attribute handle and value. It is the
// payload of GATT indications and notifications, of the discover- or
// read-characteristic-by-UUID response, and of the write permit
// request; the opcode distinguishes which.
type AttributeValue struct {
	ConnHandle ConnectionHandle
	AttrHandle AttributeHandle

	op       Opcode
	valueLen int
	value    [MaxAttributeLen]byte
}

func (e *AttributeValue) Opcode() Opcode { return e.op }

// Value returns the attribute value.
func (e *AttributeValue) Value() []byte {
	return e.value[:e.valueLen]
}

func (e *AttributeValue) String() string {
	return fmt.Sprintf("AttributeValue{conn: %#04x, attr: %#04x, value: % x}",
		uint16(e.ConnHandle), uint16(e.AttrHandle), first16(e.Value()))
}

func decodeAttributeValue(b []byte, op Opcode) (Event, error) {
	if err := hci.RequireMinLen(b, 7); err != nil {
		return nil, err
	}
	dataLen := int(b[4])
	if err := hci.RequireExactLen(b, 5+dataLen); err != nil {
		return nil, err
	}

	valueLen := dataLen - 2
	e := AttributeValue{
		ConnHandle: ConnectionHandle(u16(b, 2)),
		AttrHandle: AttributeHandle(u16(b, 5)),
		op:         op,
		valueLen:   valueLen,
	}
	copy(e.value[:valueLen], b[7:])
	return &e, nil
}

func (d *Decoder) decodeGattIndication(b []byte) (Event, error) {
	return decodeAttributeValue(b, OpcodeGattIndication)
}

func (d *Decoder) decodeGattNotification(b []byte) (Event, error) {
	return decodeAttributeValue(b, OpcodeGattNotification)
}

func (d *Decoder) decodeGattDiscoverOrRead(b []byte) (Event, error) {
	return decodeAttributeValue(b, OpcodeGattDiscoverOrReadResponse)
}

// The write permit request places its data length after the attribute
// handle rather than in the common slot, and its value region is the
// whole declared length.
func (d *Decoder) decodeAttWritePermitRequest(b []byte) (Event, error) {
	if err := hci.RequireMinLen(b, 7); err != nil {
		return nil, err
	}
	dataLen := int(b[6])
	if err := hci.RequireExactLen(b, 7+dataLen); err != nil {
		return nil, err
	}

	e := AttributeValue{
		ConnHandle: ConnectionHandle(u16(b, 2)),
		AttrHandle: AttributeHandle(u16(b, 4)),
		op:         OpcodeAttWritePermitRequest,
		valueLen:   dataLen,
	}
	copy(e.value[:dataLen], b[7:])
	return &e, nil
}

// GattProcedureStatus is the outcome of a completed GATT client
// procedure.
type GattProcedureStatus uint8

const (
	// GattProcedureSuccess is BLE status success.
	GattProcedureSuccess GattProcedureStatus = iota
	// GattProcedureFailed is BLE status failed.
	GattProcedureFailed
)

func (s GattProcedureStatus) String() string {
	switch s {
	case GattProcedureSuccess:
		return "Success"
	case GattProcedureFailed:
		return "Failed"
	}
	return fmt.Sprintf("GattProcedureStatus(%d)", uint8(s))
}

func gattProcedureStatusFromByte(v byte) (GattProcedureStatus, error) {
	switch v {
	case 0x00:
		return GattProcedureSuccess, nil
	case 0x41:
		return GattProcedureFailed, nil
	}
	return 0, &BadGattProcedureStatusError{Value: v}
}

// GattProcedureComplete is generated when a GATT client procedure
// completes, with or without error.
type GattProcedureComplete struct {
	ConnHandle ConnectionHandle
	Status     GattProcedureStatus
}

func (GattProcedureComplete) Opcode() Opcode { return OpcodeGattProcedureComplete }

func (d *Decoder) decodeGattProcedureComplete(b []byte) (Event, error) {
	if err := hci.RequireExactLen(b, 6); err != nil {
		return nil, err
	}
	status, err := gattProcedureStatusFromByte(b[5])
	if err != nil {
		return nil, err
	}
	return GattProcedureComplete{
		ConnHandle: ConnectionHandle(u16(b, 2)),
		Status:     status,
	}, nil
}

// AttErrorResponse is generated when the server answers a request with
// an Error Response. During discovery procedures this is part of the
// normal flow, not necessarily a failure of the whole procedure.
type AttErrorResponse struct {
	ConnHandle ConnectionHandle

	// Request is the request opcode that triggered the error.
	Request AttRequest

	// AttrHandle is the attribute the error refers to.
	AttrHandle AttributeHandle

	// Reason is the server's error code.
	Reason AttError
}

func (AttErrorResponse) Opcode() Opcode { return OpcodeAttErrorResponse }

func (d *Decoder) decodeAttErrorResponse(b []byte) (Event, error) {
	if err := hci.RequireExactLen(b, 9); err != nil {
		return nil, err
	}
	request, err := attRequestFromByte(b[5])
	if err != nil {
		return nil, err
	}
	return AttErrorResponse{
		ConnHandle: ConnectionHandle(u16(b, 2)),
		Request:    request,
		AttrHandle: AttributeHandle(u16(b, 6)),
		Reason:     AttError(b[8]),
	}, nil
}
