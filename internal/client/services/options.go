package services

import (
	"time"

	"github.com/dmitrijs2005/plaquekeeper/internal/client/plate"
	"github.com/dmitrijs2005/plaquekeeper/internal/logging"
	"github.com/dmitrijs2005/plaquekeeper/internal/metrics"
	"github.com/google/uuid"
)

type options struct {
	log     logging.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() string
	plates  *plate.Generator
	enroll  bool
}

// Option configures a store.
type Option func(*options)

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithClock replaces time.Now for creation timestamps and plate years.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator replaces the UUIDv7 id source.
func WithIDGenerator(f func() string) Option {
	return func(o *options) { o.newID = f }
}

// WithPlateGenerator replaces the default plate number generator.
func WithPlateGenerator(g *plate.Generator) Option {
	return func(o *options) { o.plates = g }
}

// WithRosterEnrollment makes registered accounts able to log in again after
// logout. Off by default: a registered account only lives in the session.
func WithRosterEnrollment(on bool) Option {
	return func(o *options) { o.enroll = on }
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, f := range opts {
		f(&o)
	}
	if o.log == nil {
		o.log = logging.NewNopLogger()
	}
	if o.metrics == nil {
		o.metrics = metrics.NewMetrics(nil)
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.newID == nil {
		o.newID = newID
	}
	if o.plates == nil {
		o.plates = plate.NewGenerator(nil, o.now)
	}
	return o
}

// newID returns a time-ordered UUID, falling back to a random one if the
// v7 generator fails.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
