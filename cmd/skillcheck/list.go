package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/skillcheck/pkg/presenter"
	"github.com/jingkaihe/skillcheck/pkg/skills"
)

type ListConfig struct {
	Format    string
	Long      bool
	Include   []string
	Exclude   []string
	SkillsDir string
}

func NewListConfig() *ListConfig {
	return &ListConfig{
		Format: outputFormatText,
	}
}

type listedSkill struct {
	Name          string            `json:"name"`
	Path          string            `json:"path"`
	Description   string            `json:"description"`
	License       string            `json:"license,omitempty"`
	Compatibility string            `json:"compatibility,omitempty"`
	AllowedTools  []string          `json:"allowedTools,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

var listCmd = &cobra.Command{
	Use:   "list [path]",
	Short: "List discovered Agent Skills",
	Long: `Discover skills under the repository's skills directory and print
their name, location and description. Skills whose SKILL.md could not
be parsed are shown with an empty name.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := getListConfigFromFlags(cmd)

		root := "."
		if len(args) > 0 {
			root = args[0]
		}

		result, err := skills.Run(ctx, skills.RunConfig{
			Root:      root,
			SkillsDir: config.SkillsDir,
			Include:   config.Include,
			Exclude:   config.Exclude,
		})
		if err != nil {
			presenter.Error(err, "Failed to discover skills")
			os.Exit(1)
		}

		listed := make([]listedSkill, 0, len(result.Skills))
		for _, s := range result.Skills {
			entry := listedSkill{Path: s.Dir}
			if s.Parsed() {
				entry.Name = s.Meta.Name
				entry.Description = s.Meta.Description
				entry.License = s.Meta.License
				entry.Compatibility = s.Meta.Compatibility
				entry.AllowedTools = s.Meta.Tools()
				entry.Metadata = s.Meta.Custom
			}
			listed = append(listed, entry)
		}

		switch config.Format {
		case outputFormatJSON:
			out, err := json.MarshalIndent(listed, "", "  ")
			if err != nil {
				presenter.Error(err, "Failed to render skill list")
				os.Exit(1)
			}
			fmt.Println(string(out))
		default:
			printSkillTable(listed, config.Long)
		}
	},
}

func printSkillTable(listed []listedSkill, long bool) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	if long {
		fmt.Fprintln(w, "NAME\tDIRECTORY\tDESCRIPTION\tLICENSE\tCOMPATIBILITY")
		for _, s := range listed {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				s.Name, s.Path, s.Description, s.License, s.Compatibility)
		}
		return
	}

	fmt.Fprintln(w, "NAME\tDIRECTORY\tDESCRIPTION")
	for _, s := range listed {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.Name, s.Path, s.Description)
	}
}

func getListConfigFromFlags(cmd *cobra.Command) *ListConfig {
	config := NewListConfig()

	config.Format, _ = cmd.Flags().GetString("format")
	config.Long, _ = cmd.Flags().GetBool("long")
	config.Include, _ = cmd.Flags().GetStringSlice("include")
	config.Exclude, _ = cmd.Flags().GetStringSlice("exclude")

	config.SkillsDir, _ = cmd.Flags().GetString("skills-dir")
	if config.SkillsDir == "" {
		config.SkillsDir = viper.GetString("skills_dir")
	}

	return config
}

func init() {
	listCmd.Flags().String("format", outputFormatText, "Output format (text, json)")
	listCmd.Flags().Bool("long", false, "Include license and compatibility columns")
	listCmd.Flags().StringSlice("include", nil, "Only list SKILL.md paths matching these globs")
	listCmd.Flags().StringSlice("exclude", nil, "Skip SKILL.md paths matching these globs")
	listCmd.Flags().String("skills-dir", "", "Explicit skills directory (overrides resolution)")
}
