package craft

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// Save writes c as indented JSON.
func (c *Craft) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode craft: %w", err)
	}
	return nil
}

// Load decodes a craft and checks its referential integrity. Any
// decoding or integrity problem is reported as ErrInvalidFormat.
func Load(r io.Reader) (*Craft, error) {
	c := New()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		if errors.Is(err, ErrInvalidFormat) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if c.Nodes == nil {
		c.Nodes = make([]Node, 0)
	}
	if c.Rods == nil {
		c.Rods = make([]Rod, 0)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return c, nil
}

func (c *Craft) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := c.Save(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func LoadFile(path string) (*Craft, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return c, nil
}
