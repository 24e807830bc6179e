// Package cache persists discovered devices as a JSON file keyed by
// address.
package cache

import (
	"fmt"
	"io/ioutil"
	"os"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/bluewire/bluenrg"
)

type deviceCache struct {
	filename string
	lock     sync.RWMutex
}

func New(filename string) bluenrg.DeviceCache {
	dc := deviceCache{
		filename: filename,
	}

	return &dc
}

func (dc *deviceCache) Store(rec bluenrg.DeviceRecord, replace bool) error {
	dc.lock.Lock()
	defer dc.lock.Unlock()

	cache, err := dc.loadExisting()
	if err != nil {
		return err
	}

	_, ok := cache[rec.Addr]
	if ok && !replace {
		return fmt.Errorf("cache already contains device %s", rec.Addr)
	}

	cache[rec.Addr] = rec

	return dc.storeCache(cache)
}

func (dc *deviceCache) Load(addr string) (bluenrg.DeviceRecord, error) {
	dc.lock.RLock()
	defer dc.lock.RUnlock()

	cache, err := dc.loadExisting()
	if err != nil {
		return bluenrg.DeviceRecord{}, err
	}

	rec, ok := cache[addr]
	if !ok {
		return bluenrg.DeviceRecord{}, fmt.Errorf("device %s not found in cache", addr)
	}

	return rec, nil
}

func (dc *deviceCache) LoadAll() ([]bluenrg.DeviceRecord, error) {
	dc.lock.RLock()
	defer dc.lock.RUnlock()

	cache, err := dc.loadExisting()
	if err != nil {
		return nil, err
	}

	out := make([]bluenrg.DeviceRecord, 0, len(cache))
	for _, rec := range cache {
		out = append(out, rec)
	}
	return out, nil
}

func (dc *deviceCache) Clear() error {
	dc.lock.Lock()
	defer dc.lock.Unlock()

	return os.Remove(dc.filename)
}

func (dc *deviceCache) loadExisting() (map[string]bluenrg.DeviceRecord, error) {
	_, err := os.Stat(dc.filename)
	if os.IsNotExist(err) {
		return map[string]bluenrg.DeviceRecord{}, nil
	}

	in, err := ioutil.ReadFile(dc.filename)
	if err != nil {
		return nil, err
	}

	var cache map[string]bluenrg.DeviceRecord
	err = jsoniter.Unmarshal(in, &cache)
	if err != nil {
		return nil, err
	}

	return cache, nil
}

func (dc *deviceCache) storeCache(cache map[string]bluenrg.DeviceRecord) error {
	out, err := jsoniter.Marshal(cache)
	if err != nil {
		return err
	}

	return ioutil.WriteFile(dc.filename, out, 0644)
}
