// bluenrg-decode decodes hex-encoded BlueNRG vendor event buffers from
// its arguments and prints one JSON document per buffer.
//
//	bluenrg-decode --extended 0604000101020304050607020106c0
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/bluewire/bluenrg"
	"github.com/bluewire/bluenrg/advdata"
	"github.com/bluewire/bluenrg/event"
)

type output struct {
	Opcode  string      `json:"opcode"`
	Type    string      `json:"type"`
	Event   event.Event `json:"event"`
	Detail  interface{} `json:"detail,omitempty"`
	AdvData interface{} `json:"advData,omitempty"`
}

func main() {
	app := cli.NewApp()

	app.Name = "bluenrg-decode"
	app.Usage = "decode BlueNRG vendor event buffers"
	app.Version = "0.1.0"
	app.ArgsUsage = "HEXBUF [HEXBUF...]"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "extended, e",
			Usage: "decode for the BlueNRG-MS (extended) firmware",
		},
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "enable trace logging",
		},
	}
	app.Action = decode

	if err := app.Run(os.Args); err != nil {
		bluenrg.GetLogger().Errorf("%v", err)
		os.Exit(1)
	}
}

func decode(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("no event buffers given")
	}
	if c.Bool("verbose") {
		bluenrg.SetLogLevelMax()
	}

	dec := event.Decoder{}
	if c.Bool("extended") {
		dec.Variant = event.VariantExtended
	}

	enc := jsoniter.Config{IndentionStep: 2, SortMapKeys: true}.Froze()
	for _, arg := range c.Args() {
		b, err := hex.DecodeString(strings.TrimPrefix(arg, "0x"))
		if err != nil {
			return errors.Wrapf(err, "can't parse %q", arg)
		}

		e, err := dec.Decode(b)
		if err != nil {
			return errors.Wrapf(err, "can't decode %q", arg)
		}

		out, err := enc.MarshalToString(describe(e))
		if err != nil {
			return errors.Wrap(err, "can't marshal event")
		}
		fmt.Println(out)
	}
	return nil
}

func describe(e event.Event) output {
	out := output{
		Opcode: fmt.Sprintf("%#04x", uint16(e.Opcode())),
		Type:   fmt.Sprintf("%T", e),
		Event:  e,
	}

	// Payloads held in private fixed-size storage need help to show
	// up in the JSON.
	switch v := e.(type) {
	case *event.GapDeviceFound:
		out.Detail = hex.EncodeToString(v.Data())
		if f, err := advdata.Parse(v.Data()); err == nil {
			out.AdvData = f
		}
	case *event.GapProcedureComplete:
		if len(v.Name()) > 0 {
			out.Detail = string(v.Name())
		}
	case *event.GattAttributeModified:
		out.Detail = hex.EncodeToString(v.Data())
	case *event.AttReadResponse:
		out.Detail = hex.EncodeToString(v.Value())
	case *event.AttPrepareWriteResponse:
		out.Detail = hex.EncodeToString(v.Value())
	case *event.AttributeValue:
		out.Detail = hex.EncodeToString(v.Value())
	case *event.CrashReport:
		out.Detail = v.String()
	case event.GapReconnectionAddress:
		out.Detail = bluenrg.FormatAddr(v.Address)
	}
	return out
}
