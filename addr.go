package bluenrg

import (
	"fmt"
	"strings"

	"github.com/bluewire/bluenrg/event"

	"github.com/bluewire/bluenrg/sliceops"
)

// FormatAddr renders a device address in the usual big endian
// colon-separated form. The wire carries addresses little endian.
func FormatAddr(a event.BdAddrBuffer) string {
	parts := make([]string, 0, len(a))
	for _, b := range sliceops.Reversed(a[:]) {
		parts = append(parts, fmt.Sprintf("%02x", b))
	}
	return strings.Join(parts, ":")
}
