// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/btcsuite/minisketch"
	"github.com/btcsuite/minisketch/field"
)

const (
	// defaultFPBits is the false positive resistance the size command
	// plans for when none is given.
	defaultFPBits = 16

	// storedPrefix marks a command line sketch argument as the name of a
	// stored sketch rather than a hex encoded one.
	storedPrefix = "@"
)

// capsCmd shows the capabilities of the running machine.
type capsCmd struct{}

// Execute runs the caps command.
func (c *capsCmd) Execute(args []string) error {
	return runCommand(c.run)
}

func (c *capsCmd) run(s *session) error {
	w := tabwriter.NewWriter(s.out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "BITS\tMODULUS\tIMPLEMENTATIONS")
	for bits := uint32(field.MinBits); bits <= field.MaxBits; bits++ {
		f, err := field.New(bits, field.Generic)
		if err != nil {
			return err
		}

		var impls []string
		for _, impl := range field.SupportedImplementations(bits) {
			impls = append(impls, impl.String())
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", bits,
			modulusString(bits, f.Modulus()), strings.Join(impls, ","))
	}
	return w.Flush()
}

// modulusString formats the field modulus x^bits + mod as a polynomial.
func modulusString(bits uint32, mod uint64) string {
	terms := []string{termString(int(bits))}
	for i := int(bits) - 1; i >= 0; i-- {
		if mod&(1<<uint(i)) != 0 {
			terms = append(terms, termString(i))
		}
	}
	return strings.Join(terms, "+")
}

// termString formats the monomial x^i.
func termString(i int) string {
	switch i {
	case 0:
		return "1"
	case 1:
		return "x"
	}
	return fmt.Sprintf("x^%d", i)
}

// buildCmd builds a sketch from elements read from a file or standard input.
type buildCmd struct {
	sketchOpts
	File string `short:"f" long:"file" description:"Read elements from the file instead of standard input"`
	Name string `short:"n" long:"name" description:"Store the sketch under the name"`
}

// Execute runs the build command.
func (c *buildCmd) Execute(args []string) error {
	return runCommand(c.run)
}

func (c *buildCmd) run(s *session) error {
	p, err := c.params()
	if err != nil {
		return err
	}
	if p.capacity == 0 {
		return fmt.Errorf("the build command requires a capacity")
	}

	in := s.in
	if c.File != "" {
		f, err := os.Open(cleanAndExpandPath(c.File))
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	elements, err := readElements(in, p.bits)
	if err != nil {
		return err
	}

	sketch, err := p.newSketch(p.capacity)
	if err != nil {
		return err
	}
	sketch.AddMany(elements)
	ctlLog.Debugf("Built %v from %d elements", sketch, len(elements))

	return emitSketch(s, sketch, c.Name)
}

// readElements parses whitespace separated elements in decimal, or in hex
// with a 0x prefix.  Every element must fit in bits bits.  Zero is skipped
// since it cannot be a member of a sketch.
func readElements(r io.Reader, bits uint32) ([]uint64, error) {
	mask := ^uint64(0) >> (64 - bits)

	var elements []uint64
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		word := scanner.Text()
		e, err := strconv.ParseUint(word, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid element %q", word)
		}
		if e&^mask != 0 {
			return nil, fmt.Errorf("element %v does not fit in %d bits",
				e, bits)
		}
		if e == 0 {
			ctlLog.Warnf("Skipping zero element")
			continue
		}
		elements = append(elements, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return elements, nil
}

// loadSketch returns the sketch given on the command line.  Arguments with
// the stored prefix name a sketch in the store, anything else is a hex
// encoded sketch with the parameters p.
func loadSketch(s *session, p *sketchParams, arg string) (*minisketch.Sketch, error) {
	if name, ok := strings.CutPrefix(arg, storedPrefix); ok {
		db, err := s.store()
		if err != nil {
			return nil, err
		}
		sketch, err := db.Get(name)
		if err != nil {
			return nil, err
		}
		if p.hasSeed {
			sketch.SetSeed(p.seed)
		}
		return sketch, nil
	}

	buf, err := hex.DecodeString(arg)
	if err != nil {
		return nil, fmt.Errorf("sketch %q is not valid hex: %v", arg, err)
	}
	capacity := p.capacity
	if capacity == 0 {
		capacity = len(buf) * 8 / int(p.bits)
	}
	if capacity == 0 ||
		minisketch.SerializedSize(p.bits, capacity) != len(buf) {

		str := "sketch of %d bytes does not match %d-bit elements and " +
			"capacity %d"
		return nil, fmt.Errorf(str, len(buf), p.bits, capacity)
	}

	sketch, err := p.newSketch(capacity)
	if err != nil {
		return nil, err
	}
	if err := sketch.Deserialize(buf); err != nil {
		return nil, err
	}
	return sketch, nil
}

// emitSketch writes the hex encoded sketch to the output and stores it when
// a name is given.
func emitSketch(s *session, sketch *minisketch.Sketch, name string) error {
	if name != "" {
		db, err := s.store()
		if err != nil {
			return err
		}
		if err := db.Put(name, sketch); err != nil {
			return err
		}
		ctlLog.Infof("Stored %v as %q", sketch, name)
	}

	_, err := fmt.Fprintln(s.out, hex.EncodeToString(sketch.Bytes()))
	return err
}

// mergeCmd combines two or more sketches.
type mergeCmd struct {
	sketchOpts
	Name string `short:"n" long:"name" description:"Store the merged sketch under the name"`
}

// Execute runs the merge command.
func (c *mergeCmd) Execute(args []string) error {
	return runCommand(func(s *session) error {
		return c.run(s, args)
	})
}

func (c *mergeCmd) run(s *session, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("the merge command requires at least two " +
			"sketches")
	}
	p, err := c.params()
	if err != nil {
		return err
	}

	merged, err := loadSketch(s, p, args[0])
	if err != nil {
		return err
	}
	for _, arg := range args[1:] {
		other, err := loadSketch(s, p, arg)
		if err != nil {
			return err
		}
		if _, err := merged.Merge(other); err != nil {
			return err
		}
	}
	ctlLog.Debugf("Merged %d sketches into %v", len(args), merged)

	return emitSketch(s, merged, c.Name)
}

// decodeCmd recovers the elements of a sketch.
type decodeCmd struct {
	sketchOpts
	Max int `short:"m" long:"max" description:"Fail when the sketch summarizes more than this many elements -- Defaults to the capacity"`
}

// Execute runs the decode command.
func (c *decodeCmd) Execute(args []string) error {
	return runCommand(func(s *session) error {
		return c.run(s, args)
	})
}

func (c *decodeCmd) run(s *session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("the decode command requires one sketch")
	}
	if c.Max < 0 {
		return fmt.Errorf("the specified maximum [%v] is invalid", c.Max)
	}
	p, err := c.params()
	if err != nil {
		return err
	}

	sketch, err := loadSketch(s, p, args[0])
	if err != nil {
		return err
	}
	maxElements := sketch.Capacity()
	if c.Max > 0 {
		maxElements = c.Max
	}
	elements, err := sketch.DecodeMax(maxElements)
	if err != nil {
		return err
	}

	slices.Sort(elements)
	for _, e := range elements {
		if _, err := fmt.Fprintln(s.out, e); err != nil {
			return err
		}
	}
	return nil
}

// sizeCmd plans sketch capacities.
type sizeCmd struct {
	Bits     uint32 `short:"b" long:"bits" description:"Element size in bits {1-64}"`
	Elements int    `short:"m" long:"elements" description:"Number of differences to plan a capacity for"`
	Capacity int    `short:"c" long:"capacity" description:"Capacity to find the number of recoverable differences for"`
	FPBits   uint32 `long:"fpbits" description:"Required resistance against accepting an overflowed sketch, in bits"`
}

// Execute runs the size command.
func (c *sizeCmd) Execute(args []string) error {
	return runCommand(c.run)
}

func (c *sizeCmd) run(s *session) error {
	if !minisketch.BitsSupported(c.Bits) {
		str := "the specified element size [%v] is invalid -- must be " +
			"between 1 and 64"
		return fmt.Errorf(str, c.Bits)
	}
	if (c.Elements > 0) == (c.Capacity > 0) {
		return fmt.Errorf("the size command requires exactly one of " +
			"--elements and --capacity")
	}

	capacity, elements := c.Capacity, c.Elements
	if elements > 0 {
		capacity = minisketch.ComputeCapacity(c.Bits, elements, c.FPBits)
	} else {
		elements = minisketch.ComputeMaxElements(c.Bits, capacity, c.FPBits)
	}

	_, err := fmt.Fprintf(s.out, "capacity=%d elements=%d bytes=%d\n",
		capacity, elements, minisketch.SerializedSize(c.Bits, capacity))
	return err
}

// listCmd lists the stored sketches.
type listCmd struct{}

// Execute runs the list command.
func (c *listCmd) Execute(args []string) error {
	return runCommand(c.run)
}

func (c *listCmd) run(s *session) error {
	db, err := s.store()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(s.out, 0, 8, 2, ' ', 0)
	err = db.ForEach(func(name string, sketch *minisketch.Sketch) error {
		_, err := fmt.Fprintf(w, "%s\t%d\t%v\t%d\n", name, sketch.Bits(),
			sketch.Implementation(), sketch.Capacity())
		return err
	})
	if err != nil {
		return err
	}
	return w.Flush()
}

// deleteCmd removes stored sketches.
type deleteCmd struct{}

// Execute runs the delete command.
func (c *deleteCmd) Execute(args []string) error {
	return runCommand(func(s *session) error {
		return c.run(s, args)
	})
}

func (c *deleteCmd) run(s *session, names []string) error {
	if len(names) == 0 {
		return fmt.Errorf("the delete command requires a sketch name")
	}
	db, err := s.store()
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := db.Delete(name); err != nil {
			return err
		}
		ctlLog.Infof("Deleted sketch %q", name)
	}
	return nil
}
