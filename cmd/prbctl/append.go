package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aalhour/prbdb/internal/journal"
)

var appendArgs struct {
	File string
}

var appendCmd = &cobra.Command{
	Use:   "append <path> <record>",
	Short: "Append a single record to an existing segment",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := appendPayload(args)
		if err != nil {
			return err
		}
		s, err := journal.Open(args[0], nil)
		if err != nil {
			return err
		}
		defer s.Close()

		ok, err := s.Append(payload)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("record (%d bytes) can never fit in this segment", len(payload))
		}
		return nil
	},
}

func init() {
	appendCmd.Flags().StringVar(&appendArgs.File, "file", "", "read the record payload from this file instead of the command line")
}

func appendPayload(args []string) ([]byte, error) {
	if appendArgs.File != "" {
		return os.ReadFile(appendArgs.File)
	}
	if len(args) != 2 {
		return nil, fmt.Errorf("append requires a record argument, or --file")
	}
	return []byte(args[1]), nil
}
