package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of visamcp",
		Long:  `All software has versions. This is visamcp's.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("visamcp version %s\n", rootCmd.Version)
		},
	}
}
