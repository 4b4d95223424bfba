package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/hearth/internal/presentation/graph"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var formsCmd = &cobra.Command{
	Use:   "forms",
	Short: "Show the registered command forms",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		forms := app.Assistant.Forms()
		format, _ := cmd.Flags().GetString("format")

		switch format {
		case "text":
			for _, f := range forms {
				fmt.Printf("%s (%s)\n", f.Name, strings.Join(f.Keywords, ", "))
				for _, a := range f.Actions {
					fmt.Printf("  %-18s %s\n", a.Type, strings.Join(a.Keywords, ", "))
					for _, s := range a.Slots {
						req := "optional"
						if s.Required() {
							req = fmt.Sprintf("asks %q", s.Question)
						}
						fmt.Printf("    %s: %s, %s\n", s.Name, s.Type, req)
					}
				}
			}
			return nil
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(forms)
		case "yaml":
			enc := yaml.NewEncoder(os.Stdout)
			defer enc.Close()
			return enc.Encode(map[string]any{"forms": forms})
		case "mermaid":
			fmt.Print(graph.GenerateMermaid(forms, nil))
			return nil
		default:
			return fmt.Errorf("unknown format %q (supported: text, json, yaml, mermaid)", format)
		}
	},
}

func init() {
	rootCmd.AddCommand(formsCmd)
	formsCmd.Flags().StringP("format", "f", "text", "Output format: text, json, yaml or mermaid")
}
