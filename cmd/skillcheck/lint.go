package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/skillcheck/pkg/presenter"
	"github.com/jingkaihe/skillcheck/pkg/skills"
)

// Lint exit codes: 0 clean, 2 findings failed the run, 3 the requested
// skills directory does not exist.
const (
	exitLintFailed   = 2
	exitNoSkillsDir  = 3
	outputFormatText = "text"
	outputFormatJSON = "json"
)

type LintConfig struct {
	Strict          bool
	Format          string
	NoSpec          bool
	NoBestPractices bool
	NoMdlint        bool
	Include         []string
	Exclude         []string
	Skill           string
	SkillsDir       string
	MdlintConfig    string
}

func NewLintConfig() *LintConfig {
	return &LintConfig{
		Format: outputFormatText,
	}
}

var lintCmd = &cobra.Command{
	Use:   "lint [path]",
	Short: "Check Agent Skills against the spec and best practices",
	Long: `Discover every skill under the repository's skills directory and
validate it against the AgentSkills specification, the best-practice
rules (AS001-AS020), and markdown lint. Exits 2 when findings fail the
run and 3 when an explicitly requested skills directory is missing.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := getLintConfigFromFlags(cmd)

		root := "."
		if len(args) > 0 {
			root = args[0]
		}

		result, err := skills.Run(ctx, skills.RunConfig{
			Root:               root,
			SkillsDir:          config.SkillsDir,
			Include:            config.Include,
			Exclude:            config.Exclude,
			SkillFilter:        config.Skill,
			CheckSpec:          !config.NoSpec,
			CheckBestPractices: !config.NoBestPractices,
			CheckMarkdown:      !config.NoMdlint,
			MarkdownConfig:     config.MdlintConfig,
		})
		if err != nil {
			if errors.Is(err, skills.ErrNoSkillsDir) {
				presenter.Error(err, "Skills directory not found")
				os.Exit(exitNoSkillsDir)
			}
			presenter.Error(err, "Lint failed")
			os.Exit(1)
		}

		report := result.Report
		switch config.Format {
		case outputFormatJSON:
			out, err := report.JSON()
			if err != nil {
				presenter.Error(err, "Failed to render report")
				os.Exit(1)
			}
			fmt.Println(out)
		default:
			if !report.Empty() {
				fmt.Print(report.Text())
			} else {
				presenter.Success(fmt.Sprintf("Checked %d skill(s), no issues found", len(result.Skills)))
			}
		}

		if !report.Pass(config.Strict) {
			os.Exit(exitLintFailed)
		}
	},
}

func getLintConfigFromFlags(cmd *cobra.Command) *LintConfig {
	config := NewLintConfig()

	config.Strict, _ = cmd.Flags().GetBool("strict")
	config.Format, _ = cmd.Flags().GetString("format")
	config.NoSpec, _ = cmd.Flags().GetBool("no-spec")
	config.NoBestPractices, _ = cmd.Flags().GetBool("no-best-practices")
	config.NoMdlint, _ = cmd.Flags().GetBool("no-mdlint")
	config.Include, _ = cmd.Flags().GetStringSlice("include")
	config.Exclude, _ = cmd.Flags().GetStringSlice("exclude")
	config.Skill, _ = cmd.Flags().GetString("skill")
	config.MdlintConfig, _ = cmd.Flags().GetString("mdlint-config")

	config.SkillsDir, _ = cmd.Flags().GetString("skills-dir")
	if config.SkillsDir == "" {
		// SKILLCHECK_SKILLS_DIR or the skills_dir config key
		config.SkillsDir = viper.GetString("skills_dir")
	}

	return config
}

func init() {
	lintCmd.Flags().Bool("strict", false, "Treat warnings as errors")
	lintCmd.Flags().String("format", outputFormatText, "Output format (text, json)")
	lintCmd.Flags().Bool("no-spec", false, "Skip specification checks")
	lintCmd.Flags().Bool("no-best-practices", false, "Skip best-practice checks (AS001-AS020)")
	lintCmd.Flags().Bool("no-mdlint", false, "Skip markdown lint")
	lintCmd.Flags().StringSlice("include", nil, "Only check SKILL.md paths matching these globs")
	lintCmd.Flags().StringSlice("exclude", nil, "Skip SKILL.md paths matching these globs")
	lintCmd.Flags().String("skill", "", "Only check skills whose name matches this glob")
	lintCmd.Flags().String("skills-dir", "", "Explicit skills directory (overrides resolution)")
	lintCmd.Flags().String("mdlint-config", "", "Markdown lint configuration file")
}
