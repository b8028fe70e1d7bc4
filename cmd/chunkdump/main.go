package main

import (
	"cmp"
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/OCharnyshevich/voxel-engine/internal/engine/block"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/codec"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: chunkdump [flags] chunks/X_Y_Z.mcra ...\n")
		flag.PrintDefaults()
	}
	loose := flag.Bool("any-name", false, "do not check the embedded position against the file name")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	failed := false
	for _, path := range flag.Args() {
		if err := dump(path, *loose); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func dump(path string, loose bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read chunk: %w", err)
	}

	c, err := codec.Decode(data)
	if err != nil {
		return fmt.Errorf("decode chunk: %w", err)
	}
	if !loose {
		want, err := codec.ParseName(path)
		if err != nil {
			return err
		}
		if c.Position() != want {
			return fmt.Errorf("%w: file holds %v, name says %v", codec.ErrPositionMismatch, c.Position(), want)
		}
	}

	counts := make(map[block.State]int)
	for _, s := range c.All() {
		counts[s]++
	}
	states := make([]block.State, 0, len(counts))
	for s := range counts {
		states = append(states, s)
	}
	slices.SortFunc(states, func(a, b block.State) int {
		if d := cmp.Compare(counts[b], counts[a]); d != 0 {
			return d
		}
		return cmp.Compare(a, b)
	})

	size := c.Size()
	fmt.Printf("%s\n", path)
	fmt.Printf("  position: %v\n", c.Position())
	fmt.Printf("  size:     %d (%d voxels)\n", size, size.Volume())
	fmt.Printf("  stored:   %d entries, %d bytes\n", c.Blocks().Len(), len(data))
	for _, s := range states {
		fmt.Printf("  %-14s %d\n", s.Name(), counts[s])
	}
	return nil
}
