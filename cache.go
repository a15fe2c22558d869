package demandforecaster

import (
	"encoding/binary"
	"math"
	"slices"

	"github.com/aouyang1/go-demandforecaster/timedataset"
	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Fingerprint hashes an observation set together with the horizon. The order of the observations
// does not change the fingerprint, while the month each observation is bucketed into does.
func Fingerprint(obs []timedataset.Observation, horizon int) uint64 {
	hashes := make([]uint64, len(obs))
	buf := make([]byte, 0, 24)
	d := xxhash.New()
	for i, o := range obs {
		d.Reset()
		d.WriteString(o.ProductID)
		buf = buf[:0]
		buf = binary.LittleEndian.AppendUint64(buf, uint64(o.Time.UnixNano()))
		// the same instant can fall in different months depending on its location
		buf = binary.LittleEndian.AppendUint64(buf, uint64(timedataset.MonthStart(o.Time).Unix()))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(o.Quantity))
		d.Write(buf)
		hashes[i] = d.Sum64()
	}
	slices.Sort(hashes)

	d.Reset()
	buf = binary.LittleEndian.AppendUint64(buf[:0], uint64(horizon))
	d.Write(buf)
	for _, h := range hashes {
		buf = binary.LittleEndian.AppendUint64(buf[:0], h)
		d.Write(buf)
	}
	return d.Sum64()
}

// forecastCache memoizes complete catalog forecasts keyed by fingerprint
type forecastCache struct {
	lru *lru.Cache[uint64, *CatalogForecast]
}

func newForecastCache(size int) (*forecastCache, error) {
	if size == 0 {
		return nil, nil
	}
	c, err := lru.New[uint64, *CatalogForecast](size)
	if err != nil {
		return nil, err
	}
	return &forecastCache{lru: c}, nil
}

func (c *forecastCache) get(key uint64) (*CatalogForecast, bool) {
	if c == nil {
		return nil, false
	}
	cf, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	return cf.Clone(), true
}

func (c *forecastCache) add(key uint64, cf *CatalogForecast) {
	if c == nil {
		return
	}
	c.lru.Add(key, cf.Clone())
}

func (c *forecastCache) remove(key uint64) bool {
	if c == nil {
		return false
	}
	return c.lru.Remove(key)
}

func (c *forecastCache) purge() {
	if c == nil {
		return
	}
	c.lru.Purge()
}

func (c *forecastCache) len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}
