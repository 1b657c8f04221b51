package ipxact

import (
	"encoding/xml"
	"errors"
	"io"
	"os"

	"github.com/hwforge/xactgen/pkg/utils"
)

var (
	ErrInvalidDocument = errors.New("invalid register map document")
	ErrMapNotFound     = errors.New("memory map not found")
)

// Load parses a register map document from a reader
func Load(r io.Reader) (*Component, error) {
	var component Component

	decoder := xml.NewDecoder(r)
	if err := decoder.Decode(&component); err != nil {
		return nil, utils.MakeError(ErrInvalidDocument, "%v", err)
	}

	if component.Name == "" {
		return nil, utils.MakeError(ErrInvalidDocument, "component has no name")
	}

	return &component, nil
}

// LoadFile parses a register map document from a file
func LoadFile(path string) (*Component, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Load(f)
}

// MemoryMap looks up a memory map of the component by name
func (c *Component) MemoryMap(name string) (*MemoryMap, error) {
	for _, m := range c.MemoryMaps {
		if m.Name == name {
			return m, nil
		}
	}
	return nil, utils.MakeError(ErrMapNotFound, "'%v' in component '%v'", name, c.Name)
}
