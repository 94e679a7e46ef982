// objdump prints the contents of an arena snapshot file.
//
// The header is always printed. --entries adds the offset index, and --tags adds the
// version tag found at the start of every entry. Snapshots do not record the byte order
// of the entity records inside them, so --order must match the codec that wrote them.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/arloliu/objbase/endian"
	"github.com/arloliu/objbase/format"
	"github.com/arloliu/objbase/snapshot"
	"github.com/arloliu/objbase/version"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	var (
		file        string
		order       string
		showEntries bool
		showTags    bool
		maxSize     uint64
	)

	flagSet := pflag.NewFlagSet("objdump", pflag.ContinueOnError)
	flagSet.StringVarP(&file, "file", "f", "", "snapshot file to inspect (required)")
	flagSet.BoolVar(&showEntries, "entries", false, "print the offset index")
	flagSet.BoolVar(&showTags, "tags", false, "print the version tag at the start of each entry")
	flagSet.StringVar(&order, "order", "little", "byte order of the entity records (little or big)")
	flagSet.Uint64Var(&maxSize, "max-size", snapshot.DefaultMaxSize, "largest arena accepted, in bytes")
	flagSet.SetOutput(out)

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if file == "" {
		return errors.New("--file is required")
	}

	if extra := flagSet.Args(); len(extra) > 0 {
		return fmt.Errorf("unexpected argument: %s", extra[0])
	}

	recordOrder, err := format.ParseByteOrder(order)
	if err != nil {
		return err
	}

	engine, err := endian.ForOrder(recordOrder)
	if err != nil {
		return err
	}

	img, err := snapshot.ReadFile(file, snapshot.WithMaxSize(maxSize))
	if err != nil {
		return err
	}

	stats := img.Stats()
	h := img.Header

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "file:\t%s\n", file)
	fmt.Fprintf(w, "byte order:\t%s\n", h.Flag.ByteOrder())
	fmt.Fprintf(w, "compression:\t%s\n", h.Flag.Compression())
	fmt.Fprintf(w, "entries:\t%d\n", h.EntryCount)
	fmt.Fprintf(w, "data offset:\t%d\n", h.DataOffset())
	fmt.Fprintf(w, "raw length:\t%d\n", h.RawLength)
	fmt.Fprintf(w, "stored length:\t%d\n", h.StoredLength)
	fmt.Fprintf(w, "space savings:\t%.1f%%\n", stats.SpaceSavings())
	fmt.Fprintf(w, "checksum:\t0x%016X\n", h.Checksum)

	if showEntries || showTags {
		fmt.Fprintln(w)
		if showTags {
			fmt.Fprintln(w, "#\toffset\tsize\ttag")
		} else {
			fmt.Fprintln(w, "#\toffset\tsize")
		}

		data := img.Arena.Bytes()
		for i, e := range img.Arena.Entries() {
			if !showTags {
				fmt.Fprintf(w, "%d\t%d\t%d\n", i, e.Offset, e.Size)
				continue
			}

			tag, err := version.Parse(engine, data[e.Offset:e.End()])
			if err != nil {
				fmt.Fprintf(w, "%d\t%d\t%d\t<%v>\n", i, e.Offset, e.Size, err)
				continue
			}
			fmt.Fprintf(w, "%d\t%d\t%d\t%s\n", i, e.Offset, e.Size, tag)
		}
	}

	return w.Flush()
}
