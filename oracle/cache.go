// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	lru "github.com/hashicorp/golang-lru"
)

type cache struct {
	*lru.ARCCache
}

func newCache(maxSize int) *cache {
	c, _ := lru.NewARC(maxSize)
	return &cache{c}
}

// GetOrLoad returns the cached value for key, or calls load to fetch and
// cache it.
func (c *cache) GetOrLoad(key any, load func() (any, error)) (any, error) {
	if value, ok := c.Get(key); ok {
		return value, nil
	}
	value, err := load()
	if err != nil {
		return nil, err
	}
	c.Add(key, value)
	return value, nil
}
