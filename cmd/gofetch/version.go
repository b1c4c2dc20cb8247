package main

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/kbukum/gofetch/errors"
	"github.com/kbukum/gofetch/validation"
	"github.com/kbukum/gofetch/version"
)

func newVersionCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validation.New().OneOf("output", output, []string{"text", "json", "yaml"}).Err(); err != nil {
				return err
			}
			info := version.Get()
			w := cmd.OutOrStdout()
			switch output {
			case "json":
				out, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return errors.Internal(err)
				}
				fmt.Fprintf(w, "%s\n", out)
			case "yaml":
				out, err := yaml.Marshal(info)
				if err != nil {
					return errors.Internal(err)
				}
				fmt.Fprint(w, string(out))
			default:
				fmt.Fprintln(w, info.String())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, json or yaml")
	return cmd
}
