package fetch

import "time"

// Policy bounds the retry state machine for one logical fetch.
type Policy struct {
	Attempts  int           // total attempts, not retries
	BaseDelay time.Duration // backoff before the second attempt
	MaxDelay  time.Duration // backoff ceiling
	Timeout   time.Duration // per-attempt deadline
}

// DefaultPolicy returns the policy used when configuration is silent.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:  4,
		BaseDelay: 250 * time.Millisecond,
		MaxDelay:  4 * time.Second,
		Timeout:   10 * time.Second,
	}
}

// normalize fills zero fields so a partially configured policy still behaves.
func (p Policy) normalize() Policy {
	def := DefaultPolicy()
	if p.Attempts <= 0 {
		p.Attempts = def.Attempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = def.BaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = def.MaxDelay
	}
	if p.Timeout <= 0 {
		p.Timeout = def.Timeout
	}
	return p
}

// Delay returns the backoff after a failed attempt (0-based): the base delay
// doubled per attempt, capped at the ceiling.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := p.BaseDelay << uint(attempt)
	if d <= 0 || d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}
