package port

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock isolates every wall-clock read so policies and timers can be driven in tests.
// clockwork's real and fake clocks both satisfy it.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) clockwork.Timer
	NewTicker(d time.Duration) clockwork.Ticker
}
