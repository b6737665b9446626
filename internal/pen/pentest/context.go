// Package pentest provides a pen.Context that records the calls made on it.
package pentest

import (
	"fmt"
	"strings"
)

// Op is one recorded call.
type Op struct {
	Name string
	Args []float64
	Text string
}

func (o Op) String() string {
	if o.Text != "" {
		return o.Name + " " + o.Text
	}
	parts := make([]string, len(o.Args))
	for i, a := range o.Args {
		parts[i] = fmt.Sprintf("%g", a)
	}
	return strings.TrimSpace(o.Name + " " + strings.Join(parts, " "))
}

// Context records every drawing call.
type Context struct {
	Ops []Op
	// Err is returned from Stroke when set.
	Err error
}

func (c *Context) add(name string, args ...float64) {
	c.Ops = append(c.Ops, Op{Name: name, Args: args})
}

func (c *Context) BeginPath()                   { c.add("begin") }
func (c *Context) MoveTo(x, y float64)          { c.add("move", x, y) }
func (c *Context) LineTo(x, y float64)          { c.add("line", x, y) }
func (c *Context) SetLineWidth(width float64)   { c.add("width", width) }
func (c *Context) ClearRect(x, y, w, h float64) { c.add("clear", x, y, w, h) }

func (c *Context) CubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	c.add("cubic", c1x, c1y, c2x, c2y, x, y)
}

func (c *Context) SetStrokeColor(color string) {
	c.Ops = append(c.Ops, Op{Name: "color", Text: color})
}

func (c *Context) Stroke() error {
	c.add("stroke")
	return c.Err
}

// Strings returns the recorded calls in their String form.
func (c *Context) Strings() []string {
	out := make([]string, len(c.Ops))
	for i, op := range c.Ops {
		out[i] = op.String()
	}
	return out
}

// Count returns how many calls named name were recorded.
func (c *Context) Count(name string) int {
	n := 0
	for _, op := range c.Ops {
		if op.Name == name {
			n++
		}
	}
	return n
}

// Reset forgets the recorded calls.
func (c *Context) Reset() {
	c.Ops = nil
}
