package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.stacklang.dev/pkg"
	"gopkg.in/yaml.v3"
)

var format string

func main() {
	root := &cobra.Command{
		Use:   "stacklang",
		Short: "Scanner and parser front end for the stacklang language",
	}
	root.PersistentFlags().StringVar(&format, "format", "", "output format: text or yaml (default from .stacklang.toml, else text)")

	root.AddCommand(scanCmd(), parseCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func resolveConfig() (stacklang.Config, error) {
	cfg, err := stacklang.LoadConfig(".stacklang.toml")
	if err != nil {
		return stacklang.Config{}, err
	}
	if format != "" {
		cfg.Format = format
	}
	return cfg, nil
}

func scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <file>",
		Short: "Scan a source file and print its raw token stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			toks, err := stacklang.Scan(src)
			if err != nil {
				return err
			}

			cfg, err := resolveConfig()
			if err != nil {
				return err
			}

			var kept []stacklang.Token
			for _, t := range toks {
				if stacklang.IsLineMarker(t) {
					if cfg.EchoLineMarkers {
						fmt.Fprintf(os.Stderr, "%s: %s\n", t.Loc, t.Value)
					}
					continue
				}
				kept = append(kept, t)
			}

			if cfg.Format == "yaml" {
				enc, err := yaml.Marshal(kept)
				if err != nil {
					return err
				}
				fmt.Print(string(enc))
				return nil
			}

			for _, t := range kept {
				fmt.Printf("%s\t%s\n", t.Loc, t.Value)
			}
			return nil
		},
	}
}

func parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a source file and print its resolved namespace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			ns, err := stacklang.Parse(src)
			if err != nil {
				return err
			}

			cfg, err := resolveConfig()
			if err != nil {
				return err
			}

			if cfg.Format == "yaml" {
				enc, err := yaml.Marshal(stacklang.DumpNamespace(ns))
				if err != nil {
					return err
				}
				fmt.Print(string(enc))
				return nil
			}

			fmt.Println(ns.String())
			return nil
		},
	}
}
