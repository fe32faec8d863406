// Package controller is the FB-series device layer above the protocol
// session: typed reads and writes for the controller quantities this system
// uses, plus a cached last-known status so callers like the REST façade
// never touch the serial line themselves.
package controller

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/arloliu/go-rkc/logger"
	"github.com/arloliu/go-rkc/rkc"
)

// Reading is the latest decoded value of one identifier.
type Reading struct {
	Identifier string    `json:"identifier"`
	Value      float64   `json:"value"`
	Raw        string    `json:"raw"`
	At         time.Time `json:"at"`
}

// Status is a snapshot of the controller built from the latest successful
// poll. Nil fields have never been read.
type Status struct {
	At       time.Time `json:"timestamp"`
	Measured *float64  `json:"current_temperature"`
	Setpoint *float64  `json:"target_temperature"`
	Output   *float64  `json:"output_value"`
	LinkUp   bool      `json:"link_up"`
}

// Controller wraps one link session to an FB100/400/900 unit.
//
// All serial access goes through the session, which serializes it; the
// cached readings are safe for concurrent readers (the poller writes them,
// the REST layer reads them).
type Controller struct {
	session *rkc.Session
	logger  logger.Logger

	readings *xsync.MapOf[string, Reading]
	lastPoll atomic.Int64 // unix nanos of the last successful refresh
	linkUp   atomic.Bool
}

// New creates a Controller over the given session.
func New(session *rkc.Session, l logger.Logger) *Controller {
	if l == nil {
		l = logger.GetLogger()
	}

	return &Controller{
		session:  session,
		logger:   l,
		readings: xsync.NewMapOf[string, Reading](),
	}
}

// ReadMeasuredValue polls M1, the process value.
func (c *Controller) ReadMeasuredValue() (float64, error) {
	return c.readNumber(rkc.MeasuredValue)
}

// ReadSetpoint polls S1, the temperature setpoint.
func (c *Controller) ReadSetpoint() (float64, error) {
	return c.readNumber(rkc.SetValue)
}

// ReadOutput polls O1, the manipulated output in percent.
func (c *Controller) ReadOutput() (float64, error) {
	return c.readNumber(rkc.OutputValue)
}

// ReadModelCode polls ID and returns the trimmed 32-character model string.
func (c *Controller) ReadModelCode() (string, error) {
	raw, err := c.session.Read(rkc.ModelCode, rkc.NoArea)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(raw), nil
}

// WriteSetpoint selects S1 with the given temperature, formatted to the
// controller's fixed-width decimal form.
func (c *Controller) WriteSetpoint(v float64) error {
	if err := c.session.Write(rkc.SetValue, FormatValue(v), rkc.NoArea); err != nil {
		return err
	}

	c.storeReading(rkc.SetValue.Code, v, FormatValue(v))

	return nil
}

// RefreshStatus polls measured value, setpoint and output over one chained
// link, updates the cached readings and returns the fresh snapshot.
// On failure the link-health flag drops and the previous readings remain
// available through Status.
func (c *Controller) RefreshStatus() (Status, error) {
	values, err := c.session.ReadChain(
		[]rkc.Identifier{rkc.MeasuredValue, rkc.SetValue, rkc.OutputValue},
		rkc.NoArea,
	)
	if err != nil {
		c.linkUp.Store(false)

		return c.Status(), fmt.Errorf("controller: refresh status: %w", err)
	}

	now := time.Now()
	for _, v := range values {
		num, perr := ParseValue(v.Data)
		if perr != nil {
			c.logger.Warn("controller: unparsable reading",
				"identifier", v.Identifier,
				"raw", v.Data,
			)

			continue
		}

		c.readings.Store(v.Identifier, Reading{
			Identifier: v.Identifier,
			Value:      num,
			Raw:        v.Data,
			At:         now,
		})
	}

	c.lastPoll.Store(now.UnixNano())
	c.linkUp.Store(true)

	return c.Status(), nil
}

// Status returns the last-known snapshot without touching the serial line.
func (c *Controller) Status() Status {
	return Status{
		At:       time.Unix(0, c.lastPoll.Load()),
		Measured: c.value(rkc.MeasuredValue.Code),
		Setpoint: c.value(rkc.SetValue.Code),
		Output:   c.value(rkc.OutputValue.Code),
		LinkUp:   c.linkUp.Load(),
	}
}

// LinkUp reports whether the most recent transaction succeeded.
func (c *Controller) LinkUp() bool {
	return c.linkUp.Load()
}

// Reading returns the latest decoded value for an identifier code.
func (c *Controller) Reading(code string) (Reading, bool) {
	return c.readings.Load(code)
}

func (c *Controller) readNumber(id rkc.Identifier) (float64, error) {
	raw, err := c.session.Read(id, rkc.NoArea)
	if err != nil {
		c.linkUp.Store(false)

		return 0, err
	}

	v, err := ParseValue(raw)
	if err != nil {
		return 0, err
	}

	c.linkUp.Store(true)
	c.storeReading(id.Code, v, raw)

	return v, nil
}

func (c *Controller) storeReading(code string, v float64, raw string) {
	c.readings.Store(code, Reading{
		Identifier: code,
		Value:      v,
		Raw:        raw,
		At:         time.Now(),
	})
}

func (c *Controller) value(code string) *float64 {
	r, ok := c.readings.Load(code)
	if !ok {
		return nil
	}

	v := r.Value

	return &v
}
