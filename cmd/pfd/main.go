// pfd - command line tool for process-flow diagram documents
//
// Usage:
//
//	pfd info <file>                Show document summary
//	pfd validate <file>            Check that every tab loads
//	pfd convert <in> [out]         Convert between .pfd and .json
//	pfd dot <file>                 Emit Graphviz DOT for a tab
//	pfd render <file> -o out.png   Render a tab to PNG
//	pfd shapes                     List the node shapes
//	pfd new <file>                 Create an empty document
package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ha1tch/pfd-toolkit/pkg/diagram"
	"github.com/ha1tch/pfd-toolkit/pkg/pfdfile"
)

const version = "0.1.0"

var (
	brand  = color.New(color.FgHiGreen, color.Bold)
	subtle = color.New(color.FgHiBlack)
	warn   = color.New(color.FgYellow)
	info   = color.New(color.FgCyan)
	good   = color.New(color.FgGreen)
	bad    = color.New(color.FgRed)
)

var (
	verbose bool
	noColor bool
	logger  = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:     "pfd",
	Short:   "pfd - process-flow diagram toolkit",
	Long:    brand.Sprint("pfd") + " inspects, converts and renders process-flow diagrams\n" + subtle.Sprint("Documents are .pfd archives or bare .json snapshots"),
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColor {
			color.NoColor = true
		}
		if !verbose {
			return nil
		}
		cfg := zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{"stderr"}
		l, err := cfg.Build()
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("pfd {{ .Version }}\n")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log scene operations to stderr")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		infoCmd(),
		validateCmd(),
		convertCmd(),
		dotCmd(),
		renderCmd(),
		shapesCmd(),
		newCmd(),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		bad.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadDocument(path string) (*pfdfile.Document, error) {
	return pfdfile.Load(path, diagram.WithLogger(logger))
}
