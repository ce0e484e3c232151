package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"otterpack/internal/convert"
)

func newFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "formats",
		Short:       "List the available output formats",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := convert.Formats()
			rows := make([][]string, 0, len(formats))
			for _, f := range formats {
				rows = append(rows, []string{f.Name, f.DisplayName, "." + f.Extension, yesNo(f.Project), strings.Join(f.EncoderArgs, " ")})
			}
			fmt.Fprintln(cmd.OutOrStdout(), tableSpec{
				headers: []string{"Name", "Description", "Extension", "Project", "Encoder args"},
				rows:    rows,
			}.render())
			return nil
		},
	}
}
