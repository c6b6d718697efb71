package main

import (
	"fmt"
	"os"

	"github.com/kr/pretty"
	"github.com/spf13/cobra"

	"github.com/svfmt/svfmt/pkg/svelte"
)

func astCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ast [file]",
		Short: "Dump the parse tree of a component file",
		Long: `Parse a component file and pretty-print its syntax tree. Embedded
script and style bodies are snipped out the same way the formatter does,
so the tree shows the codec's marker attributes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			root, err := svelte.Parse(svelte.EncodeEmbedded(string(source)))
			if err != nil {
				return fmt.Errorf("parsing %s: %w", args[0], err)
			}
			_, err = pretty.Println(root)
			return err
		},
	}
}
