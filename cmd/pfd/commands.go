package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ha1tch/pfd-toolkit/pkg/diagram"
	"github.com/ha1tch/pfd-toolkit/pkg/pfdfile"
	"github.com/ha1tch/pfd-toolkit/pkg/render"
)

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Show document summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s %s\n", brand.Sprint("Document:"), doc.Name)
			fmt.Printf("ID:       %s\n", subtle.Sprint(doc.ID))
			fmt.Printf("Tabs:     %d\n", len(doc.Tabs))
			for i, t := range doc.Tabs {
				printTab(i, t)
			}
			return nil
		},
	}
}

func printTab(i int, t *pfdfile.Tab) {
	s := t.Scene
	fmt.Println()
	fmt.Printf("%s %s\n", info.Sprintf("[%d]", i), t.Name)
	fmt.Printf("  Nodes:      %d\n", len(s.Nodes()))
	fmt.Printf("  Lines:      %d\n", len(s.Lines()))
	fmt.Printf("  Components: %d\n", len(s.Components()))

	counts := make(map[string]int)
	labelled := 0
	for _, n := range s.Nodes() {
		counts[n.Type()]++
		if n.Label() != nil {
			labelled++
		}
	}
	fmt.Printf("  Labels:     %d\n", labelled)
	if len(counts) == 0 {
		return
	}
	types := make([]string, 0, len(counts))
	for k := range counts {
		types = append(types, k)
	}
	sort.Strings(types)
	parts := make([]string, len(types))
	for j, k := range types {
		parts[j] = fmt.Sprintf("%s=%d", k, counts[k])
	}
	fmt.Printf("  Types:      %s\n", strings.Join(parts, " "))
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check that every tab of each file loads",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				doc, err := loadDocument(path)
				if err != nil {
					failed++
					kind := "invalid"
					if diagram.IsStructureError(err) {
						kind = "broken structure"
					}
					bad.Printf("%s: %s: %v\n", path, kind, err)
					continue
				}
				nodes, lines := 0, 0
				for _, t := range doc.Tabs {
					nodes += len(t.Scene.Nodes())
					lines += len(t.Scene.Lines())
				}
				good.Printf("%s: valid, %d tabs, %d nodes, %d lines\n", path, len(doc.Tabs), nodes, lines)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(args))
			}
			return nil
		},
	}
}

func convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <input> [output]",
		Short: "Convert between .pfd and .json",
		Long: "Convert between .pfd archives and .json snapshots.\n" +
			"Without an output path the extension is swapped. Writing .json keeps only the first tab.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			output := ""
			if len(args) > 1 {
				output = args[1]
			} else {
				output = swapExt(input)
			}
			if output == "" {
				return fmt.Errorf("cannot derive output name from %s", input)
			}

			doc, err := loadDocument(input)
			if err != nil {
				return err
			}
			if strings.EqualFold(filepath.Ext(output), ".json") && len(doc.Tabs) > 1 {
				warn.Printf("Only the first of %d tabs is kept in %s\n", len(doc.Tabs), output)
			}
			if err := pfdfile.Save(output, doc); err != nil {
				return err
			}
			good.Printf("Written: %s\n", output)
			return nil
		},
	}
}

func swapExt(path string) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	switch strings.ToLower(ext) {
	case ".json":
		return base + ".pfd"
	case ".pfd":
		return base + ".json"
	}
	return ""
}

func dotCmd() *cobra.Command {
	var (
		tab    int
		title  string
		output string
	)
	cmd := &cobra.Command{
		Use:   "dot <file>",
		Short: "Emit Graphviz DOT for a tab",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			t, err := pickTab(doc, tab)
			if err != nil {
				return err
			}
			heading := title
			if heading == "" {
				heading = t.Name
			}
			dot := pfdfile.GenerateDOT(t.Scene, heading)
			if output == "" {
				fmt.Print(dot)
				return nil
			}
			if err := os.WriteFile(output, []byte(dot), 0o644); err != nil {
				return err
			}
			good.Printf("Written: %s\n", output)
			return nil
		},
	}
	cmd.Flags().IntVar(&tab, "tab", 0, "Tab index")
	cmd.Flags().StringVar(&title, "title", "", "Graph title (default: tab name)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	return cmd
}

func renderCmd() *cobra.Command {
	opts := render.DefaultOptions()
	var (
		tab    int
		output string
	)
	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a tab to PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			t, err := pickTab(doc, tab)
			if err != nil {
				return err
			}
			out := output
			if out == "" {
				out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".png"
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := render.RenderPNG(t.Scene, f, opts); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			w, h := render.Size(t.Scene, opts)
			good.Printf("Written: %s ", out)
			subtle.Printf("(%dx%d)\n", w, h)
			return nil
		},
	}
	cmd.Flags().IntVar(&tab, "tab", 0, "Tab index")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output PNG (default: input name with .png)")
	cmd.Flags().Float64Var(&opts.Scale, "scale", opts.Scale, "Pixels per scene unit")
	cmd.Flags().Float64Var(&opts.Padding, "padding", opts.Padding, "Pixels around the diagram")
	cmd.Flags().Float64Var(&opts.FontSize, "font-size", opts.FontSize, "Label font size")
	cmd.Flags().BoolVar(&opts.ShowGrips, "grips", false, "Draw connection and resize grips")
	return cmd
}

func shapesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shapes",
		Short: "List the node shapes",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			icons := diagram.DefaultIcons()
			for _, name := range icons.Shapes() {
				icon, _ := icons.Icon(name)
				fmt.Printf("  %s %s\n", info.Sprintf("%-16s", name), subtle.Sprint(outlineName(icon.Outline)))
			}
		},
	}
}

func newCmd() *cobra.Command {
	var (
		name string
		tabs []string
	)
	cmd := &cobra.Command{
		Use:   "new <file>",
		Short: "Create an empty document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			docName := name
			if docName == "" {
				docName = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			}
			doc := pfdfile.NewDocument(docName)
			for _, t := range tabs {
				doc.AddTab(t, nil)
			}
			if err := pfdfile.Save(path, doc); err != nil {
				return err
			}
			good.Printf("Created: %s ", path)
			subtle.Printf("(%s)\n", doc.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Document name (default: file name)")
	cmd.Flags().StringSliceVar(&tabs, "tab", []string{"main"}, "Tab names")
	return cmd
}

func pickTab(doc *pfdfile.Document, i int) (*pfdfile.Tab, error) {
	if i < 0 || i >= len(doc.Tabs) {
		return nil, fmt.Errorf("tab %d out of range (%d tabs)", i, len(doc.Tabs))
	}
	return doc.Tabs[i], nil
}

func outlineName(o diagram.Outline) string {
	switch o {
	case diagram.OutlineEllipse:
		return "ellipse"
	case diagram.OutlineRect:
		return "rectangle"
	case diagram.OutlineRoundedRect:
		return "rounded rectangle"
	case diagram.OutlineDiamond:
		return "diamond"
	case diagram.OutlineTriangle:
		return "triangle"
	}
	return "unknown"
}
