// Package advdata parses the advertising and scan response payloads
// carried by GAP device found events. A payload is a sequence of AD
// structures, each a length byte, a type byte and data.
//
// https://www.bluetooth.org/en-us/specification/assigned-numbers/generic-access-profile
package advdata

import (
	"encoding/hex"
	"fmt"

	"github.com/bluewire/bluenrg/sliceops"
)

// AD structure types understood by Parse. Unknown types are skipped.
const (
	typeFlags       = 0x01
	typeUUID16Inc   = 0x02
	typeUUID16Comp  = 0x03
	typeUUID32Inc   = 0x04
	typeUUID32Comp  = 0x05
	typeUUID128Inc  = 0x06
	typeUUID128Comp = 0x07
	typeNameShort   = 0x08
	typeNameComp    = 0x09
	typeTxPower     = 0x0A
	typeSol16       = 0x14
	typeSol128      = 0x15
	typeSvcData16   = 0x16
	typeSol32       = 0x1F
	typeSvcData32   = 0x20
	typeSvcData128  = 0x21
	typeMfgData     = 0xFF
)

// UUID is a service UUID in wire (little endian) order.
type UUID []byte

// String renders the UUID in the usual big endian hex form.
func (u UUID) String() string {
	return hex.EncodeToString(sliceops.Reversed(u))
}

// ServiceData pairs a service UUID with its advertised data.
type ServiceData struct {
	UUID UUID
	Data []byte
}

// Fields is the decoded content of one advertising payload. Slices
// accumulate across records, so the fields of an advertisement and its
// scan response can be merged by parsing both into the same value.
type Fields struct {
	Flags    byte
	HasFlags bool

	LocalName    string
	CompleteName bool

	TxPower    int8
	HasTxPower bool

	ManufacturerData []byte

	Services    []UUID
	Solicited   []UUID
	ServiceData []ServiceData
}

type record struct {
	typ  byte
	data []byte
}

// Parse decodes one advertising payload. Records with types it does
// not know are ignored; malformed record framing fails the parse with
// the fields decoded so far.
func Parse(pdu []byte) (*Fields, error) {
	var f Fields
	err := f.Merge(pdu)
	return &f, err
}

// Merge decodes pdu into f, accumulating over whatever f already
// holds.
func (f *Fields) Merge(pdu []byte) error {
	if len(pdu) == 0 {
		return nil
	}

	for i := 0; i+1 < len(pdu); {
		length := int(pdu[i])
		if length < 1 {
			return fmt.Errorf("invalid record length %v, idx %v", length, i)
		}
		if i+length >= len(pdu) {
			return fmt.Errorf("record overflow: want %v, have %v, idx %v", i+length, len(pdu), i)
		}

		data := make([]byte, length-1)
		copy(data, pdu[i+2:i+1+length])
		if err := f.apply(record{typ: pdu[i+1], data: data}); err != nil {
			return fmt.Errorf("adv type %#02x, idx %v: %w", pdu[i+1], i, err)
		}

		i += length + 1
	}
	return nil
}

func (f *Fields) apply(r record) error {
	switch r.typ {
	case typeFlags:
		if len(r.data) < 1 {
			return fmt.Errorf("empty flags")
		}
		f.Flags = r.data[0]
		f.HasFlags = true

	case typeNameComp, typeNameShort:
		f.LocalName = string(r.data)
		f.CompleteName = r.typ == typeNameComp

	case typeTxPower:
		if len(r.data) < 1 {
			return fmt.Errorf("empty tx power")
		}
		f.TxPower = int8(r.data[0])
		f.HasTxPower = true

	case typeMfgData:
		if len(f.ManufacturerData) != 0 && len(r.data) >= 2 {
			// the scan response repeats the company id
			r.data = r.data[2:]
		}
		f.ManufacturerData = append(f.ManufacturerData, r.data...)

	case typeUUID16Inc, typeUUID16Comp:
		return f.appendUUIDs(&f.Services, r.data, 2)
	case typeUUID32Inc, typeUUID32Comp:
		return f.appendUUIDs(&f.Services, r.data, 4)
	case typeUUID128Inc, typeUUID128Comp:
		return f.appendUUIDs(&f.Services, r.data, 16)

	case typeSol16:
		return f.appendUUIDs(&f.Solicited, r.data, 2)
	case typeSol32:
		return f.appendUUIDs(&f.Solicited, r.data, 4)
	case typeSol128:
		return f.appendUUIDs(&f.Solicited, r.data, 16)

	case typeSvcData16:
		return f.appendServiceData(r.data, 2)
	case typeSvcData32:
		return f.appendServiceData(r.data, 4)
	case typeSvcData128:
		return f.appendServiceData(r.data, 16)
	}
	return nil
}

func (f *Fields) appendUUIDs(dst *[]UUID, data []byte, size int) error {
	if len(data) == 0 || len(data)%size != 0 {
		return fmt.Errorf("uuid list length %v not a multiple of %v", len(data), size)
	}
	for i := 0; i < len(data); i += size {
		*dst = append(*dst, UUID(data[i:i+size]))
	}
	return nil
}

func (f *Fields) appendServiceData(data []byte, uuidSize int) error {
	if len(data) < uuidSize {
		return fmt.Errorf("service data shorter than its %v-byte uuid", uuidSize)
	}
	f.ServiceData = append(f.ServiceData, ServiceData{
		UUID: UUID(data[:uuidSize]),
		Data: data[uuidSize:],
	})
	return nil
}
