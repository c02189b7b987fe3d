package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/skillcheck/pkg/presenter"
	"github.com/jingkaihe/skillcheck/pkg/skills"
)

type InitConfig struct {
	Root        string
	Dir         string
	Legacy      bool
	Description string
	Force       bool
}

func NewInitConfig() *InitConfig {
	return &InitConfig{
		Root: ".",
	}
}

var initCmd = &cobra.Command{
	Use:   "init <name>",
	Short: "Scaffold a new Agent Skill",
	Long: `Create a new skill directory with a starter SKILL.md and README.md.
The skill name must be lowercase, hyphenated, and at most 64
characters. By default the skill is created under .github/skills.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config := getInitConfigFromFlags(cmd)
		name := args[0]

		created, err := skills.Scaffold(skills.ScaffoldConfig{
			Name:        name,
			Root:        config.Root,
			Dir:         config.Dir,
			Legacy:      config.Legacy,
			Description: config.Description,
			Force:       config.Force,
		})
		if err != nil {
			presenter.Error(err, "Failed to create skill")
			os.Exit(1)
		}

		presenter.Success(fmt.Sprintf("Created skill %q", name))
		for _, path := range created {
			presenter.Info(fmt.Sprintf("  - %s", path))
		}
	},
}

func getInitConfigFromFlags(cmd *cobra.Command) *InitConfig {
	config := NewInitConfig()

	config.Root, _ = cmd.Flags().GetString("root")
	config.Dir, _ = cmd.Flags().GetString("dir")
	config.Legacy, _ = cmd.Flags().GetBool("legacy")
	config.Description, _ = cmd.Flags().GetString("description")
	config.Force, _ = cmd.Flags().GetBool("force")

	return config
}

func init() {
	initCmd.Flags().String("root", ".", "Repository root to create the skill under")
	initCmd.Flags().String("dir", "", "Explicit parent directory (overrides the default layout)")
	initCmd.Flags().Bool("legacy", false, "Create under .claude/skills instead of .github/skills")
	initCmd.Flags().String("description", "", "Frontmatter description (placeholder when omitted)")
	initCmd.Flags().Bool("force", false, "Overwrite existing files")
}
