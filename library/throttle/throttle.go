// Package throttle limits request rates per caller and in total.
package throttle

import (
	"sync"

	"github.com/Laisky/errors/v2"
	"golang.org/x/time/rate"
)

// Cfg configuration for Throttle
type Cfg struct {
	TotalNPerSec, TotalBurst     int
	EachKeyNPerSec, EachKeyBurst int
}

// Throttle is a token bucket shared by all callers plus one bucket per key.
type Throttle struct {
	cfg   Cfg
	total *rate.Limiter
	keys  sync.Map // key -> *rate.Limiter
}

// New create new Throttle
func New(cfg Cfg) (*Throttle, error) {
	if cfg.TotalNPerSec <= 0 || cfg.EachKeyNPerSec <= 0 {
		return nil, errors.New("NPerSec must bigger than 0")
	}
	if cfg.TotalBurst < cfg.TotalNPerSec || cfg.EachKeyBurst < cfg.EachKeyNPerSec {
		return nil, errors.New("burst must not be less than NPerSec")
	}

	return &Throttle{
		cfg:   cfg,
		total: rate.NewLimiter(rate.Limit(cfg.TotalNPerSec), cfg.TotalBurst),
	}, nil
}

// Allow reports whether key may proceed now.
// A request denied by its own bucket does not spend a shared token.
func (t *Throttle) Allow(key string) bool {
	v, ok := t.keys.Load(key)
	if !ok {
		v, _ = t.keys.LoadOrStore(key,
			rate.NewLimiter(rate.Limit(t.cfg.EachKeyNPerSec), t.cfg.EachKeyBurst))
	}

	return v.(*rate.Limiter).Allow() && t.total.Allow()
}
