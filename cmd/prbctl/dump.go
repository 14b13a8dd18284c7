package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aalhour/prbdb/internal/formatmap"
	"github.com/aalhour/prbdb/internal/journal"
)

var dumpArgs struct {
	Hex    bool
	Fields string
}

var dumpCmd = &cobra.Command{
	Use:   "dump <path>",
	Short: "Print every live record in a segment, oldest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := parseDumpFormat(dumpArgs.Fields)
		if err != nil {
			return err
		}

		s, err := journal.Open(args[0], nil)
		if err != nil {
			return err
		}
		defer s.Close()

		it := s.Iterate()
		i := 0
		for {
			rec, ok := it.Next()
			if !ok {
				break
			}
			if format != nil {
				printDecoded(i, rec, format)
			} else if dumpArgs.Hex {
				fmt.Printf("%6d  %s\n", i, hex.EncodeToString(rec))
			} else {
				fmt.Printf("%6d  %q\n", i, rec)
			}
			i++
		}
		return nil
	},
}

func init() {
	dumpCmd.Flags().BoolVar(&dumpArgs.Hex, "hex", false, "print record payloads as hex instead of quoted text")
	dumpCmd.Flags().StringVar(&dumpArgs.Fields, "fields", "",
		`decode each record as a sequence of fields "name:kind,...", kind one of bytes|string|uint64|int64|bool`)
}

// parseDumpFormat builds a formatmap.Format out of a "name:kind,..." spec
// and registers it in a fresh formatmap.Map, the same registry a longer-
// lived process would keep one of per segment format. It returns nil if
// spec is empty: dump falls back to raw/hex printing.
func parseDumpFormat(spec string) (*formatmap.Format, error) {
	if spec == "" {
		return nil, nil
	}
	parts := strings.Split(spec, ",")
	fields := make([]formatmap.Field, 0, len(parts))
	for _, p := range parts {
		name, kind, ok := strings.Cut(p, ":")
		if !ok {
			return nil, fmt.Errorf("--fields: %q is missing a :kind", p)
		}
		k, err := parseFieldKind(kind)
		if err != nil {
			return nil, err
		}
		fields = append(fields, formatmap.Field{Name: name, Kind: k})
	}

	f := &formatmap.Format{ID: 1, Fields: fields}
	m := formatmap.New()
	m.Add(f)
	return m.Find(f.ID), nil
}

func parseFieldKind(kind string) (formatmap.FieldKind, error) {
	switch kind {
	case "bytes":
		return formatmap.KindBytes, nil
	case "string":
		return formatmap.KindString, nil
	case "uint64":
		return formatmap.KindUint64, nil
	case "int64":
		return formatmap.KindInt64, nil
	case "bool":
		return formatmap.KindBool, nil
	default:
		return 0, fmt.Errorf("--fields: unknown kind %q", kind)
	}
}

func printDecoded(i int, rec []byte, format *formatmap.Format) {
	values, err := format.Decode(rec)
	if err != nil {
		fmt.Printf("%6d  <%v>\n", i, err)
		return
	}
	parts := make([]string, 0, len(format.Fields))
	for _, field := range format.Fields {
		parts = append(parts, fmt.Sprintf("%s=%s", field.Name, values[field.Name]))
	}
	fmt.Printf("%6d  %s\n", i, strings.Join(parts, " "))
}
