package main

import (
	"fmt"
	"io"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/xraph/beanforge/internal/configclass"
	"github.com/xraph/beanforge/internal/definition"
	"github.com/xraph/beanforge/internal/metadata"
	"github.com/xraph/beanforge/logger"
)

// classification is one row of the report.
type classification struct {
	Class       string   `json:"class"`
	Mode        string   `json:"mode"`
	Order       *int     `json:"order,omitempty"`
	BeanMethods []string `json:"beanMethods,omitempty"`
}

func newClassifyCommand() *cobra.Command {
	var (
		output  string
		verbose bool
		watchFS bool
	)

	cmd := &cobra.Command{
		Use:   "classify <descriptor-file>...",
		Short: "Classify the classes of descriptor files",
		Example: `  # Report every class of two descriptor files
  beaninspect classify app.yaml legacy.json

  # Machine-readable output
  beaninspect classify app.yaml --output json

  # Re-run on every save
  beaninspect classify app.yaml --watch`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "text" && output != "json" {
				return fmt.Errorf("unsupported output format %q", output)
			}

			l := logger.NewNoopLogger()
			if verbose {
				l = logger.NewLogger(logger.LoggingConfig{Level: "debug"})
			}

			render := func() error {
				report, err := classify(cmd, args, l)
				if err != nil {
					return err
				}
				if output == "json" {
					return writeJSON(cmd.OutOrStdout(), report)
				}
				writeText(cmd.OutOrStdout(), report)
				return nil
			}

			if !watchFS {
				return render()
			}

			if err := render(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", colorize(red, "error:"), err)
			}
			return watch(cmd.Context(), args, func() error {
				fmt.Fprintln(cmd.OutOrStdout())
				err := render()
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", colorize(red, "error:"), err)
				}
				return err
			}, l)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format (text, json)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log classifier diagnostics")
	cmd.Flags().BoolVarP(&watchFS, "watch", "w", false, "re-classify whenever a descriptor file changes")

	return cmd
}

// classify registers one definition per described class and runs the
// configuration processor over them. Units come first in visit order,
// followed by the remaining classes by name.
func classify(cmd *cobra.Command, paths []string, l logger.Logger) ([]classification, error) {
	store := metadata.NewDescriptorStore()
	for _, path := range paths {
		if err := store.LoadFile(path); err != nil {
			return nil, err
		}
	}

	registry := definition.NewRegistry(false)
	for _, name := range store.Names() {
		if err := registry.RegisterDefinition(name, definition.New(name, nil)); err != nil {
			return nil, err
		}
	}

	classifier := configclass.NewClassifier(
		configclass.WithReader(store),
		configclass.WithLogger(l.Named("classifier")),
	)
	processor := configclass.NewProcessor(classifier, l.Named("processor"))
	if err := processor.PostProcessDefinitions(cmd.Context(), registry); err != nil {
		return nil, err
	}

	methods := map[string][]string{}
	for _, name := range registry.Names() {
		def, err := registry.Definition(name)
		if err != nil {
			continue
		}
		if unit, ok := def.Attribute(configclass.AttrDerivedFrom); ok {
			u, _ := unit.(string)
			methods[u] = append(methods[u], name)
		}
	}

	report := make([]classification, 0, len(store.Names()))
	seen := map[string]bool{}
	for _, name := range processor.Visited() {
		seen[name] = true
		report = append(report, describe(registry, name, methods[name]))
	}
	for _, name := range store.Names() {
		if !seen[name] {
			report = append(report, describe(registry, name, nil))
		}
	}
	return report, nil
}

func describe(registry definition.Registry, name string, beanMethods []string) classification {
	c := classification{Class: name, Mode: configclass.None.String(), BeanMethods: beanMethods}
	def, err := registry.Definition(name)
	if err != nil {
		return c
	}
	c.Mode = configclass.TagOf(def).String()
	if _, ok := def.Attribute(configclass.AttrOrder); ok {
		order := configclass.GetOrder(def)
		c.Order = &order
	}
	return c
}

func writeJSON(out io.Writer, report []classification) error {
	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func writeText(out io.Writer, report []classification) {
	t := newTable(out, "CLASS", "MODE", "ORDER", "BEAN METHODS")

	units := 0
	for _, c := range report {
		order := "-"
		if c.Order != nil {
			order = strconv.Itoa(*c.Order)
		}
		methods := fmt.Sprint(len(c.BeanMethods))
		if c.Mode != configclass.None.String() {
			units++
		}
		t.AppendRow(c.Class, colorize(tagColor(modeTag(c.Mode)), c.Mode), order, methods)
	}
	t.Render()

	fmt.Fprintf(out, "\n%s %d classes, %d configuration units\n", colorize(boldBlue, "summary:"), len(report), units)
}

func modeTag(mode string) configclass.Tag {
	if mode == configclass.None.String() {
		return configclass.None
	}
	return configclass.Tag(mode)
}
