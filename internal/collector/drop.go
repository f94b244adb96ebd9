package collector

import "github.com/scribery/aushape-go/pkg/auparse"

// Drop discards every record handed to it. It exists so a record type
// that carries no information worth rendering (EOE, the end-of-event
// marker) can still be routed through the same Registry as every other
// type, rather than special-cased by the converter.
type Drop struct{}

// NewDrop returns a Collector that renders nothing.
func NewDrop() *Drop {
	return &Drop{}
}

func (d *Drop) IsEmpty() bool { return true }

func (d *Drop) Empty() {}

func (d *Drop) Add(pcount *int, level int64, prio int64, rec auparse.Record) error {
	return nil
}

func (d *Drop) End(pcount *int, level int64, prio int64) error {
	return nil
}
