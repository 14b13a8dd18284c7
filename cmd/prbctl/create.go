package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aalhour/prbdb/internal/journal"
)

var createArgs struct {
	Size int
}

var createCmd = &cobra.Command{
	Use:   "create <path>",
	Short: "Create a new, empty journal segment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := journal.Create(args[0], createArgs.Size, nil)
		if err != nil {
			return err
		}
		defer s.Close()
		fmt.Printf("created %s (%d bytes)\n", args[0], s.Size())
		return nil
	},
}

func init() {
	createCmd.Flags().IntVar(&createArgs.Size, "size", 1<<20, "segment size in bytes")
}
