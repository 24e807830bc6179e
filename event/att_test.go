package event

import (
	"bytes"
	"testing"

	"github.com/bluewire/bluenrg/hci"
)

func TestGattAttributeModifiedStandard(t *testing.T) {
	d := Decoder{Variant: VariantStandard}
	e, err := d.Decode([]byte{0x01, 0x0C, 0x01, 0x00, 0x05, 0x00, 0x03, 0xAA, 0xBB, 0xCC})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	am, ok := e.(*GattAttributeModified)
	if !ok {
		t.Fatalf("expected *GattAttributeModified, got %#v", e)
	}
	if am.ConnHandle != 0x0001 || am.AttrHandle != 0x0005 {
		t.Fatalf("handles: got %#v", am)
	}
	if am.Offset != 0 || am.Continued {
		t.Fatalf("offset fields set on standard variant: %#v", am)
	}
	if !bytes.Equal(am.Data(), []byte{0xAA, 0xBB, 0xCC}) {
		t.Fatalf("data: got % x", am.Data())
	}
}

func TestGattAttributeModifiedExtended(t *testing.T) {
	d := Decoder{Variant: VariantExtended}
	e, err := d.Decode([]byte{0x01, 0x0C, 0x01, 0x00, 0x05, 0x00, 0x02, 0x07, 0x80, 0xAA, 0xBB})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	am := e.(*GattAttributeModified)
	if am.Offset != 7 {
		t.Fatalf("offset: got %d", am.Offset)
	}
	if !am.Continued {
		t.Fatalf("continuation bit lost")
	}
	if !bytes.Equal(am.Data(), []byte{0xAA, 0xBB}) {
		t.Fatalf("data: got % x", am.Data())
	}
}

func TestGattAttributeModifiedBadDataLength(t *testing.T) {
	d := Decoder{Variant: VariantStandard}
	_, err := d.Decode([]byte{0x01, 0x0C, 0x01, 0x00, 0x05, 0x00, 0x04, 0xAA, 0xBB, 0xCC})
	le, ok := err.(*hci.LengthError)
	if !ok {
		t.Fatalf("expected *hci.LengthError, got %T (%v)", err, err)
	}
	if le.Actual != 10 || le.Required != 11 {
		t.Fatalf("expected (10, 11), got (%d, %d)", le.Actual, le.Required)
	}
}

func TestAttExchangeMtuResponse(t *testing.T) {
	var d Decoder
	e, err := d.Decode([]byte{0x03, 0x0C, 0x01, 0x00, 0x02, 0x9B, 0x00})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	mr, ok := e.(AttExchangeMtuResponse)
	if !ok {
		t.Fatalf("expected AttExchangeMtuResponse, got %#v", e)
	}
	if mr.ConnHandle != 0x0001 || mr.ServerRxMtu != 155 {
		t.Fatalf("got %#v", mr)
	}
}

func TestAttFindInformationResponseFormat16(t *testing.T) {
	var d Decoder
	b := []byte{
		0x04, 0x0C, 0x01, 0x00, 9, 1,
		0x01, 0x00, 0x00, 0x28,
		0x02, 0x00, 0x03, 0x28,
	}
	e, err := d.Decode(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	fi, ok := e.(*AttFindInformationResponse)
	if !ok {
		t.Fatalf("expected *AttFindInformationResponse, got %#v", e)
	}
	if fi.Format() != UUIDFormat16 || fi.Count() != 2 {
		t.Fatalf("format %v count %d", fi.Format(), fi.Count())
	}

	want := []HandleUUID16Pair{
		{Handle: 0x0001, UUID: 0x2800},
		{Handle: 0x0002, UUID: 0x2803},
	}
	it := fi.UUID16Pairs()
	for i, w := range want {
		p, ok := it.Next()
		if !ok {
			t.Fatalf("pair %d missing", i)
		}
		if p != w {
			t.Fatalf("pair %d: got %#v", i, p)
		}
	}
	if _, ok := it.Next(); ok {
		t.Fatalf("iterator yields beyond count")
	}

	// A fresh iterator restarts from the first pair.
	it = fi.UUID16Pairs()
	if p, ok := it.Next(); !ok || p != want[0] {
		t.Fatalf("restart: got %#v", p)
	}

	it128 := fi.UUID128Pairs()
	if _, ok := it128.Next(); ok {
		t.Fatalf("128-bit iterator not empty for 16-bit response")
	}
}

func TestAttFindInformationResponseFormat128(t *testing.T) {
	var d Decoder
	uuid := UUID128{
		0xFB, 0x34, 0x9B, 0x5F, 0x80, 0x00, 0x00, 0x80,
		0x00, 0x10, 0x00, 0x00, 0x00, 0x28, 0x00, 0x00,
	}
	b := append([]byte{0x04, 0x0C, 0x01, 0x00, 19, 2, 0x10, 0x00}, uuid[:]...)
	e, err := d.Decode(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	fi := e.(*AttFindInformationResponse)
	if fi.Format() != UUIDFormat128 || fi.Count() != 1 {
		t.Fatalf("format %v count %d", fi.Format(), fi.Count())
	}

	it := fi.UUID128Pairs()
	p, ok := it.Next()
	if !ok {
		t.Fatalf("pair missing")
	}
	if p.Handle != 0x0010 || p.UUID != uuid {
		t.Fatalf("got %#v", p)
	}
	if _, ok := it.Next(); ok {
		t.Fatalf("iterator yields beyond count")
	}

	it16 := fi.UUID16Pairs()
	if _, ok := it16.Next(); ok {
		t.Fatalf("16-bit iterator not empty for 128-bit response")
	}
}

func TestAttFindInformationResponseEmpty(t *testing.T) {
	var d Decoder
	e, err := d.Decode([]byte{0x04, 0x0C, 0x01, 0x00, 1, 1})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	fi := e.(*AttFindInformationResponse)
	if fi.Count() != 0 {
		t.Fatalf("count: got %d", fi.Count())
	}
	it := fi.UUID16Pairs()
	if _, ok := it.Next(); ok {
		t.Fatalf("iterator not empty")
	}
}

func TestAttFindInformationResponsePartialPair(t *testing.T) {
	var d Decoder
	_, err := d.Decode([]byte{0x04, 0x0C, 0x01, 0x00, 7, 1, 0x01, 0x00, 0x00, 0x28, 0x02, 0x00})
	if err != ErrPartialHandleUUID16Pair {
		t.Fatalf("16-bit: expected ErrPartialHandleUUID16Pair, got %v", err)
	}

	_, err = d.Decode([]byte{0x04, 0x0C, 0x01, 0x00, 5, 2, 0x10, 0x00, 0xAA, 0xBB})
	if err != ErrPartialHandleUUID128Pair {
		t.Fatalf("128-bit: expected ErrPartialHandleUUID128Pair, got %v", err)
	}
}

func TestAttFindInformationResponseBadFormat(t *testing.T) {
	var d Decoder
	_, err := d.Decode([]byte{0x04, 0x0C, 0x01, 0x00, 1, 3})
	fe, ok := err.(*BadFindInformationFormatError)
	if !ok {
		t.Fatalf("expected *BadFindInformationFormatError, got %T (%v)", err, err)
	}
	if fe.Value != 3 {
		t.Fatalf("error carries %d", fe.Value)
	}
}

func TestAttFindByTypeValueResponse(t *testing.T) {
	var d Decoder
	b := []byte{
		0x05, 0x0C, 0x01, 0x00, 8,
		0x01, 0x00, 0x04, 0x00,
		0x06, 0x00, 0x08, 0x00,
	}
	e, err := d.Decode(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	fr, ok := e.(*AttFindByTypeValueResponse)
	if !ok {
		t.Fatalf("expected *AttFindByTypeValueResponse, got %#v", e)
	}
	if fr.Count() != 2 {
		t.Fatalf("count: got %d", fr.Count())
	}

	want := []HandleInfoPair{
		{Attribute: 0x0001, GroupEnd: 0x0004},
		{Attribute: 0x0006, GroupEnd: 0x0008},
	}
	it := fr.HandlePairs()
	for i, w := range want {
		p, ok := it.Next()
		if !ok {
			t.Fatalf("pair %d missing", i)
		}
		if p != w {
			t.Fatalf("pair %d: got %#v", i, p)
		}
	}
	if _, ok := it.Next(); ok {
		t.Fatalf("iterator yields beyond count")
	}
}

func TestAttFindByTypeValueResponsePartialPair(t *testing.T) {
	var d Decoder
	_, err := d.Decode([]byte{0x05, 0x0C, 0x01, 0x00, 6, 0x01, 0x00, 0x04, 0x00, 0x06, 0x00})
	if err != ErrPartialHandleInfoPair {
		t.Fatalf("expected ErrPartialHandleInfoPair, got %v", err)
	}
}

func TestAttReadByTypeResponse(t *testing.T) {
	var d Decoder
	b := []byte{
		0x06, 0x0C, 0x01, 0x00, 9, 4,
		0x03, 0x00, 0x12, 0x34,
		0x05, 0x00, 0x56, 0x78,
	}
	e, err := d.Decode(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	rr, ok := e.(*AttReadByTypeResponse)
	if !ok {
		t.Fatalf("expected *AttReadByTypeResponse, got %#v", e)
	}

	type pair struct {
		handle AttributeHandle
		value  []byte
	}
	want := []pair{
		{0x0003, []byte{0x12, 0x34}},
		{0x0005, []byte{0x56, 0x78}},
	}
	it := rr.HandleValuePairs()
	for i, w := range want {
		p, ok := it.Next()
		if !ok {
			t.Fatalf("pair %d missing", i)
		}
		if p.Handle != w.handle || !bytes.Equal(p.Value, w.value) {
			t.Fatalf("pair %d: got %#04x % x", i, uint16(p.Handle), p.Value)
		}
	}
	if _, ok := it.Next(); ok {
		t.Fatalf("iterator yields beyond count")
	}
}

func TestAttReadByTypeResponsePartialPair(t *testing.T) {
	var d Decoder

	_, err := d.Decode([]byte{0x06, 0x0C, 0x01, 0x00, 7, 4, 0x03, 0x00, 0x12, 0x34, 0x05, 0x00})
	if err != ErrPartialHandleValuePair {
		t.Fatalf("trailing bytes: expected ErrPartialHandleValuePair, got %v", err)
	}

	// A pair length shorter than the handle alone can never hold a pair.
	_, err = d.Decode([]byte{0x06, 0x0C, 0x01, 0x00, 3, 1, 0x03, 0x00})
	if err != ErrPartialHandleValuePair {
		t.Fatalf("tiny pair length: expected ErrPartialHandleValuePair, got %v", err)
	}
}

func TestAttReadResponses(t *testing.T) {
	var d Decoder
	value := []byte{0x11, 0x22, 0x33}
	ops := []Opcode{OpcodeAttReadResponse, OpcodeAttReadBlobResponse, OpcodeAttReadMultipleResponse}
	for _, op := range ops {
		b := append([]byte{byte(op), byte(op >> 8), 0x01, 0x00, byte(len(value))}, value...)
		e, err := d.Decode(b)
		if err != nil {
			t.Fatalf("%#04x: %v", uint16(op), err)
		}
		rr, ok := e.(*AttReadResponse)
		if !ok {
			t.Fatalf("%#04x: expected *AttReadResponse, got %#v", uint16(op), e)
		}
		if rr.Opcode() != op {
			t.Fatalf("%#04x: event reports %#04x", uint16(op), uint16(rr.Opcode()))
		}
		if rr.ConnHandle != 0x0001 || !bytes.Equal(rr.Value(), value) {
			t.Fatalf("%#04x: got %#v", uint16(op), rr)
		}
	}
}

func TestAttReadByGroupTypeResponse(t *testing.T) {
	var d Decoder
	b := []byte{
		0x0A, 0x0C, 0x01, 0x00, 13, 6,
		0x01, 0x00, 0x04, 0x00, 0x00, 0x18,
		0x05, 0x00, 0x08, 0x00, 0x01, 0x18,
	}
	e, err := d.Decode(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	gr, ok := e.(*AttReadByGroupTypeResponse)
	if !ok {
		t.Fatalf("expected *AttReadByGroupTypeResponse, got %#v", e)
	}

	type group struct {
		attr     AttributeHandle
		groupEnd GroupEndHandle
		value    []byte
	}
	want := []group{
		{0x0001, 0x0004, []byte{0x00, 0x18}},
		{0x0005, 0x0008, []byte{0x01, 0x18}},
	}
	it := gr.AttributeData()
	for i, w := range want {
		g, ok := it.Next()
		if !ok {
			t.Fatalf("group %d missing", i)
		}
		if g.AttributeHandle != w.attr || g.GroupEndHandle != w.groupEnd ||
			!bytes.Equal(g.Value, w.value) {
			t.Fatalf("group %d: got %#v", i, g)
		}
	}
	if _, ok := it.Next(); ok {
		t.Fatalf("iterator yields beyond count")
	}
}

func TestAttReadByGroupTypeResponsePartialGroup(t *testing.T) {
	var d Decoder

	_, err := d.Decode([]byte{
		0x0A, 0x0C, 0x01, 0x00, 11, 6,
		0x01, 0x00, 0x04, 0x00, 0x00, 0x18,
		0x05, 0x00, 0x08, 0x00,
	})
	if err != ErrPartialAttributeData {
		t.Fatalf("trailing bytes: expected ErrPartialAttributeData, got %v", err)
	}

	// A group length shorter than the two handles can never hold a group.
	_, err = d.Decode([]byte{0x0A, 0x0C, 0x01, 0x00, 4, 3, 0x01, 0x00, 0x04})
	if err != ErrPartialAttributeData {
		t.Fatalf("tiny group length: expected ErrPartialAttributeData, got %v", err)
	}
}

func TestAttPrepareWriteResponse(t *testing.T) {
	var d Decoder
	e, err := d.Decode([]byte{0x0C, 0x0C, 0x01, 0x00, 7, 0x09, 0x00, 0x40, 0x00, 0xAA, 0xBB, 0xCC})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	pw, ok := e.(*AttPrepareWriteResponse)
	if !ok {
		t.Fatalf("expected *AttPrepareWriteResponse, got %#v", e)
	}
	if pw.ConnHandle != 0x0001 || pw.AttrHandle != 0x0009 || pw.Offset != 64 {
		t.Fatalf("got %#v", pw)
	}
	if !bytes.Equal(pw.Value(), []byte{0xAA, 0xBB, 0xCC}) {
		t.Fatalf("value: got % x", pw.Value())
	}
}

func TestAttributeValueEvents(t *testing.T) {
	var d Decoder
	value := []byte{0x64}
	ops := []Opcode{OpcodeGattIndication, OpcodeGattNotification, OpcodeGattDiscoverOrReadResponse}
	for _, op := range ops {
		b := append([]byte{byte(op), byte(op >> 8), 0x01, 0x00, byte(2 + len(value)), 0x0E, 0x00}, value...)
		e, err := d.Decode(b)
		if err != nil {
			t.Fatalf("%#04x: %v", uint16(op), err)
		}
		av, ok := e.(*AttributeValue)
		if !ok {
			t.Fatalf("%#04x: expected *AttributeValue, got %#v", uint16(op), e)
		}
		if av.Opcode() != op {
			t.Fatalf("%#04x: event reports %#04x", uint16(op), uint16(av.Opcode()))
		}
		if av.AttrHandle != 0x000E || !bytes.Equal(av.Value(), value) {
			t.Fatalf("%#04x: got %v", uint16(op), av)
		}
	}
}

func TestAttWritePermitRequest(t *testing.T) {
	var d Decoder
	e, err := d.Decode([]byte{0x13, 0x0C, 0x01, 0x00, 0x0E, 0x00, 2, 0xAA, 0xBB})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	av, ok := e.(*AttributeValue)
	if !ok {
		t.Fatalf("expected *AttributeValue, got %#v", e)
	}
	if av.Opcode() != OpcodeAttWritePermitRequest {
		t.Fatalf("event reports %#04x", uint16(av.Opcode()))
	}
	if av.ConnHandle != 0x0001 || av.AttrHandle != 0x000E {
		t.Fatalf("got %v", av)
	}
	if !bytes.Equal(av.Value(), []byte{0xAA, 0xBB}) {
		t.Fatalf("value: got % x", av.Value())
	}
}

func TestGattProcedureComplete(t *testing.T) {
	var d Decoder
	e, err := d.Decode([]byte{0x10, 0x0C, 0x01, 0x00, 0x01, 0x00})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	pc, ok := e.(GattProcedureComplete)
	if !ok {
		t.Fatalf("expected GattProcedureComplete, got %#v", e)
	}
	if pc.ConnHandle != 0x0001 || pc.Status != GattProcedureSuccess {
		t.Fatalf("got %#v", pc)
	}

	e, err = d.Decode([]byte{0x10, 0x0C, 0x01, 0x00, 0x01, 0x41})
	if err != nil {
		t.Fatalf("failed status: %v", err)
	}
	if pc := e.(GattProcedureComplete); pc.Status != GattProcedureFailed {
		t.Fatalf("failed status: got %#v", pc)
	}

	_, err = d.Decode([]byte{0x10, 0x0C, 0x01, 0x00, 0x01, 0x01})
	se, ok := err.(*BadGattProcedureStatusError)
	if !ok {
		t.Fatalf("expected *BadGattProcedureStatusError, got %T (%v)", err, err)
	}
	if se.Value != 1 {
		t.Fatalf("error carries %d", se.Value)
	}
}

func TestAttErrorResponse(t *testing.T) {
	var d Decoder
	e, err := d.Decode([]byte{0x11, 0x0C, 0x01, 0x00, 0x04, 0x08, 0x05, 0x00, 0x0A})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	er, ok := e.(AttErrorResponse)
	if !ok {
		t.Fatalf("expected AttErrorResponse, got %#v", e)
	}
	if er.Request != AttReqReadByTypeRequest {
		t.Fatalf("request: got %v", er.Request)
	}
	if er.AttrHandle != 0x0005 {
		t.Fatalf("handle: got %#04x", uint16(er.AttrHandle))
	}
	if er.Reason != AttErrAttributeNotFound {
		t.Fatalf("reason: got %v", er.Reason)
	}
}

func TestAttErrorResponseBadRequestOpcode(t *testing.T) {
	var d Decoder
	for _, v := range []byte{0x00, 0x14, 0x1A, 0x53} {
		_, err := d.Decode([]byte{0x11, 0x0C, 0x01, 0x00, 0x04, v, 0x05, 0x00, 0x0A})
		re, ok := err.(*BadAttRequestOpcodeError)
		if !ok {
			t.Fatalf("%#02x: expected *BadAttRequestOpcodeError, got %T (%v)", v, err, err)
		}
		if re.Value != v {
			t.Fatalf("%#02x: error carries %#02x", v, re.Value)
		}
	}
}

func TestAttErrorRanges(t *testing.T) {
	if !AttError(0x12).IsReserved() || !AttError(0x7F).IsReserved() ||
		!AttError(0xA0).IsReserved() || !AttError(0xFB).IsReserved() {
		t.Fatalf("reserved range not recognized")
	}
	if AttError(0x80).IsReserved() || AttError(0xFC).IsReserved() {
		t.Fatalf("reserved range too wide")
	}
	if !AttError(0x80).IsApplicationError() || !AttError(0x9F).IsApplicationError() {
		t.Fatalf("application range not recognized")
	}
	if AttError(0x7F).IsApplicationError() || AttError(0xA0).IsApplicationError() {
		t.Fatalf("application range too wide")
	}
	if AttErrInvalidHandle.String() != "Invalid Handle" {
		t.Fatalf("got %q", AttErrInvalidHandle.String())
	}
}
