package event

import (
	"testing"

	"github.com/bluewire/bluenrg/hci"
)

func TestDecodeTruncatedOpcode(t *testing.T) {
	var d Decoder
	_, err := d.Decode([]byte{0x01})
	le, ok := err.(*hci.LengthError)
	if !ok {
		t.Fatalf("expected *hci.LengthError, got %T (%v)", err, err)
	}
	if le.Actual != 1 || le.Required != 2 {
		t.Fatalf("expected (1, 2), got (%d, %d)", le.Actual, le.Required)
	}
}

func TestDecodeUnknownOpcode(t *testing.T) {
	var d Decoder
	_, err := d.Decode([]byte{0xFE, 0xCA})
	ue, ok := err.(*UnknownEventError)
	if !ok {
		t.Fatalf("expected *UnknownEventError, got %T (%v)", err, err)
	}
	if ue.Opcode != 0xCAFE {
		t.Fatalf("expected opcode 0xCAFE, got %#04x", ue.Opcode)
	}
}

func TestDecodeUnitEvents(t *testing.T) {
	var d Decoder
	cases := []struct {
		op   Opcode
		want Event
	}{
		{OpcodeGapLimitedDiscoverable, GapLimitedDiscoverable{}},
		{OpcodeGapSlaveSecurityInitiated, GapSlaveSecurityInitiated{}},
		{OpcodeGapBondLost, GapBondLost{}},
	}
	for _, c := range cases {
		e, err := d.Decode([]byte{byte(c.op), byte(c.op >> 8)})
		if err != nil {
			t.Fatalf("%#04x: %v", uint16(c.op), err)
		}
		if e != c.want {
			t.Fatalf("%#04x: got %#v", uint16(c.op), e)
		}
		if e.Opcode() != c.op {
			t.Fatalf("%#04x: event reports opcode %#04x", uint16(c.op), uint16(e.Opcode()))
		}
	}
}

func TestDecodeConnHandleEvents(t *testing.T) {
	var d Decoder

	e, err := d.Decode([]byte{0x02, 0x04, 0x34, 0x12})
	if err != nil {
		t.Fatalf("pass key request: %v", err)
	}
	if pk, ok := e.(GapPassKeyRequest); !ok || pk.ConnHandle != 0x1234 {
		t.Fatalf("expected GapPassKeyRequest{0x1234}, got %#v", e)
	}

	e, err = d.Decode([]byte{0x03, 0x04, 0x01, 0x00})
	if err != nil {
		t.Fatalf("authorization request: %v", err)
	}
	if ar, ok := e.(GapAuthorizationRequest); !ok || ar.ConnHandle != 0x0001 {
		t.Fatalf("expected GapAuthorizationRequest{0x0001}, got %#v", e)
	}

	e, err = d.Decode([]byte{0x02, 0x0C, 0x02, 0x00})
	if err != nil {
		t.Fatalf("gatt procedure timeout: %v", err)
	}
	if pt, ok := e.(GattProcedureTimeout); !ok || pt.ConnHandle != 0x0002 {
		t.Fatalf("expected GattProcedureTimeout{0x0002}, got %#v", e)
	}

	e, err = d.Decode([]byte{0x0D, 0x0C, 0xAB, 0x00})
	if err != nil {
		t.Fatalf("execute write response: %v", err)
	}
	if ew, ok := e.(AttExecuteWriteResponse); !ok || ew.ConnHandle != 0x00AB {
		t.Fatalf("expected AttExecuteWriteResponse{0x00AB}, got %#v", e)
	}
}

func TestDecodeConnHandleEventTooShort(t *testing.T) {
	var d Decoder
	_, err := d.Decode([]byte{0x02, 0x04, 0x34})
	le, ok := err.(*hci.LengthError)
	if !ok {
		t.Fatalf("expected *hci.LengthError, got %T (%v)", err, err)
	}
	if le.Actual != 3 || le.Required != 4 {
		t.Fatalf("expected (3, 4), got (%d, %d)", le.Actual, le.Required)
	}
}

func TestDecodeAddressResolutionByVariant(t *testing.T) {
	buf := []byte{0x08, 0x04, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06}

	std := Decoder{Variant: VariantStandard}
	e, err := std.Decode(buf)
	if err != nil {
		t.Fatalf("standard: %v", err)
	}
	ra, ok := e.(GapReconnectionAddress)
	if !ok {
		t.Fatalf("standard: expected GapReconnectionAddress, got %#v", e)
	}
	if ra.Address != (BdAddrBuffer{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}) {
		t.Fatalf("standard: bad address % x", ra.Address[:])
	}

	ext := Decoder{Variant: VariantExtended}
	e, err = ext.Decode(buf[:4])
	if err != nil {
		t.Fatalf("extended: %v", err)
	}
	nr, ok := e.(GapAddressNotResolved)
	if !ok {
		t.Fatalf("extended: expected GapAddressNotResolved, got %#v", e)
	}
	if nr.ConnHandle != 0x0201 {
		t.Fatalf("extended: expected handle 0x0201, got %#04x", uint16(nr.ConnHandle))
	}
}

func TestDecodeReconnectionAddressWrongLength(t *testing.T) {
	var d Decoder
	_, err := d.Decode([]byte{0x08, 0x04, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07})
	le, ok := err.(*hci.LengthError)
	if !ok {
		t.Fatalf("expected *hci.LengthError, got %T (%v)", err, err)
	}
	if le.Actual != 9 || le.Required != 8 {
		t.Fatalf("expected (9, 8), got (%d, %d)", le.Actual, le.Required)
	}
}
