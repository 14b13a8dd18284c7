package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aalhour/prbdb/internal/journal"
)

var statCmd = &cobra.Command{
	Use:   "stat <path>",
	Short: "Print a segment's size and live record count",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := journal.Open(args[0], nil)
		if err != nil {
			return err
		}
		defer s.Close()

		count := 0
		bytes := 0
		it := s.Iterate()
		for {
			rec, ok := it.Next()
			if !ok {
				break
			}
			count++
			bytes += len(rec)
		}

		fmt.Printf("path:           %s\n", args[0])
		fmt.Printf("segment size:   %d bytes\n", s.Size())
		fmt.Printf("live records:   %d\n", count)
		fmt.Printf("live payload:   %d bytes\n", bytes)
		return nil
	},
}
