package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/NextDoc4j/nextdoc4j-ui/internal/adapters/converters"
	"github.com/NextDoc4j/nextdoc4j-ui/internal/cache"
	"github.com/NextDoc4j/nextdoc4j-ui/internal/domain"
	"github.com/NextDoc4j/nextdoc4j-ui/internal/schema"
)

var errNotAggregated = errors.New("the primary document does not enable aggregation")

func (c *CLI) menuCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Print the navigation tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			menu, err := c.generate(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), menu)
			}
			writeMenu(cmd.OutOrStdout(), menu, 0)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the tree as JSON")
	return cmd
}

func (c *CLI) operationCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "operation <group> <tag> <operationId>",
		Short: "Show an operation with its resolved request and response schemas",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.generate(cmd.Context()); err != nil {
				return err
			}
			a := c.app
			group, tag, opID := args[0], args[1], args[2]
			op, ok := a.api.SearchOperation(group, tag, opID)
			if !ok {
				return fmt.Errorf("operation %s not found in %s/%s", opID, group, tag)
			}
			doc, _ := a.api.GroupDocument(group)
			view := newOperationView(schema.NewResolver(doc), op)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), view)
			}
			writeOperation(cmd.OutOrStdout(), view)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the operation as JSON")
	return cmd
}

func (c *CLI) entityCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "entity <group> <schema>",
		Short: "Show a component schema as a field tree with an example payload",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.generate(cmd.Context()); err != nil {
				return err
			}
			group, name := args[0], args[1]
			doc, ok := c.app.api.GroupDocument(group)
			if !ok {
				return fmt.Errorf("group %s not found", group)
			}
			if _, ok := doc.LookupSchema(name); !ok {
				return fmt.Errorf("entity %s not found in %s", name, group)
			}
			view := newEntityView(name, schema.NewResolver(doc).ResolveName(name))
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), view)
			}
			writeEntity(cmd.OutOrStdout(), view)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the entity as JSON")
	return cmd
}

func (c *CLI) markdownCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "markdown <group> <name>",
		Short: "Print an attached markdown document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.generate(cmd.Context()); err != nil {
				return err
			}
			doc, ok := c.app.api.SearchMarkdown(args[0], args[1])
			if !ok {
				return fmt.Errorf("markdown %s not found in %s", args[1], args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), doc.Content)
			return nil
		},
	}
}

func (c *CLI) servicesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "services",
		Short: "List aggregated services with their availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.aggregated(cmd.Context())
			if err != nil {
				return err
			}
			current, _ := a.registry.Current()
			out := cmd.OutOrStdout()
			for _, svc := range a.registry.Services() {
				marker := " "
				if svc.URL == current.URL {
					marker = "*"
				}
				cached := "cached"
				if _, err := a.cache.Entry(svc.URL); cache.IsNotFound(err) {
					cached = "-"
				}
				line := fmt.Sprintf("%s %-8s %-20s %-40s %s", marker, svc.Status, svc.Name, svc.URL, cached)
				if svc.Reason != "" {
					line += "  " + svc.Reason
				}
				fmt.Fprintln(out, strings.TrimRight(line, " "))
			}
			return nil
		},
	}
}

func (c *CLI) switchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "switch <service-url>",
		Short: "Select the aggregated service to browse",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.aggregated(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.registry.Switch(args[0]); err != nil {
				return err
			}
			menu, err := a.generator.Generate(cmd.Context())
			if err != nil {
				return err
			}
			current, _ := a.registry.Current()
			fmt.Fprintf(cmd.OutOrStdout(), "Switched to %s (%s), %d menu section(s)\n", current.Name, current.URL, len(menu))
			return nil
		},
	}
}

func (c *CLI) tabsCommand() *cobra.Command {
	var open, title, closeTab string
	var clearAll bool
	cmd := &cobra.Command{
		Use:   "tabs <service-url>",
		Short: "Show or change the saved tab strip of a service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.wire()
			if err != nil {
				return err
			}
			serviceURL := args[0]
			state := a.registry.Tabs(serviceURL)
			changed := clearAll || open != "" || closeTab != ""
			state = applyTabChanges(state, clearAll, open, title, closeTab)
			if changed {
				a.registry.SaveTabs(serviceURL, state)
			}
			for _, tab := range state.Tabs {
				marker := " "
				if tab.Path == state.CurrentTab {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\t%s\n", marker, tab.Path, tab.Title)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&open, "open", "", "Open a tab for a route path and make it current")
	cmd.Flags().StringVar(&title, "title", "", "Title of the tab opened with --open")
	cmd.Flags().StringVar(&closeTab, "close", "", "Close the tab of a route path")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Close every tab")
	return cmd
}

// applyTabChanges returns the tab state after clearing, closing and opening, in that order.
func applyTabChanges(state domain.TabsState, clearAll bool, open, title, closeTab string) domain.TabsState {
	tabs := slices.Clone(state.Tabs)
	if clearAll {
		tabs = []domain.Tab{}
		state.CurrentTab = ""
	}
	if closeTab != "" {
		tabs = slices.DeleteFunc(tabs, func(t domain.Tab) bool { return t.Path == closeTab })
		if state.CurrentTab == closeTab {
			state.CurrentTab = ""
			if len(tabs) > 0 {
				state.CurrentTab = tabs[len(tabs)-1].Path
			}
		}
	}
	if open != "" {
		if !slices.ContainsFunc(tabs, func(t domain.Tab) bool { return t.Path == open }) {
			tabs = append(tabs, domain.Tab{Path: open, Title: title})
		}
		state.CurrentTab = open
	}
	if tabs == nil {
		tabs = []domain.Tab{}
	}
	state.Tabs = tabs
	return state
}

func (c *CLI) resetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Drop cached documents, the selected service and saved tabs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.wire()
			if err != nil {
				return err
			}
			if err := a.registry.Reset(); err != nil {
				return fmt.Errorf("failed to reset state: %w", err)
			}
			a.api.Reset()
			fmt.Fprintln(cmd.OutOrStdout(), "State cleared")
			return nil
		},
	}
}

func (c *CLI) exportCommand() *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the documentation to PDF, Word (DOCX) or Confluence (ADF)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			converter, err := converters.New(format)
			if err != nil {
				return fmt.Errorf("%w (supported: %s)", err, strings.Join(converters.Formats(), ", "))
			}
			if _, err := c.generate(cmd.Context()); err != nil {
				return err
			}
			manual := c.app.api.Manual()
			if manual == nil {
				return errors.New("no documentation available to export")
			}

			c.log.Infof("Converting %s to %s format...", manual.Title, converter.Format())

			outputFile, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer outputFile.Close()

			if err := converter.Convert(manual, outputFile); err != nil {
				return fmt.Errorf("conversion failed: %w", err)
			}

			c.log.Infof("Successfully created: %s", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "pdf", "Output format: "+strings.Join(converters.Formats(), ", "))
	cmd.Flags().StringVarP(&output, "output", "o", "", "Path for the output file (required)")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

// generate wires the components and builds the menu, which applies the active document set.
func (c *CLI) generate(ctx context.Context) ([]*domain.MenuNode, error) {
	a, err := c.wire()
	if err != nil {
		return nil, err
	}
	return a.generator.Generate(ctx)
}

// aggregated wires the components and initializes the service registry.
func (c *CLI) aggregated(ctx context.Context) (*app, error) {
	a, err := c.wire()
	if err != nil {
		return nil, err
	}
	main, err := a.cache.MainConfig(ctx)
	if err != nil {
		return nil, err
	}
	if !main.OpenAPI.IsAggregation() {
		return nil, errNotAggregated
	}
	if err := a.registry.Init(ctx); err != nil {
		return nil, err
	}
	return a, nil
}
