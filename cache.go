package bluenrg

import "time"

// DeviceRecord is what the monitor remembers about one discovered
// peer. Addr is the big endian colon-separated address string.
type DeviceRecord struct {
	Addr     string    `json:"addr"`
	AddrType string    `json:"addrType"`
	Name     string    `json:"name,omitempty"`
	RSSI     int8      `json:"rssi"`
	LastSeen time.Time `json:"lastSeen"`
}

// DeviceCache persists discovered devices across monitor runs.
type DeviceCache interface {
	Store(DeviceRecord, bool) error
	Load(addr string) (DeviceRecord, error)
	LoadAll() ([]DeviceRecord, error)
	Clear() error
}
