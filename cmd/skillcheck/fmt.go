package main

import (
	"fmt"
	"os"

	"github.com/aymanbagabas/go-udiff"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/skillcheck/pkg/markdown"
	"github.com/jingkaihe/skillcheck/pkg/osutil"
	"github.com/jingkaihe/skillcheck/pkg/presenter"
	"github.com/jingkaihe/skillcheck/pkg/skills"
)

const exitFmtChanges = 2

type FmtConfig struct {
	Check         bool
	Diff          bool
	NoFrontmatter bool
	NoMdlint      bool
	Include       []string
	Exclude       []string
	SkillsDir     string
	MdlintConfig  string
}

func NewFmtConfig() *FmtConfig {
	return &FmtConfig{}
}

var fmtCmd = &cobra.Command{
	Use:   "fmt [path]",
	Short: "Normalize SKILL.md formatting",
	Long: `Rewrite every discovered SKILL.md with canonical frontmatter and
markdown fixes applied. Formatting is idempotent. With --check nothing
is written and the command exits 2 when changes would be made; --diff
prints a unified diff instead of writing.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := getFmtConfigFromFlags(cmd)

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
		if len(result.Skills) == 0 {
			presenter.Info("No skills found")
			return
		}

		var mdConfig *markdown.Config
		if !config.NoMdlint {
			mdConfig, err = markdown.LoadConfig(config.MdlintConfig)
			if err != nil {
				presenter.Error(err, "Failed to load markdown lint config")
				os.Exit(1)
			}
		}

		var writeErrs *multierror.Error
		changed := 0
		for _, skill := range result.Skills {
			original, err := os.ReadFile(skill.SkillFile)
			if err != nil {
				writeErrs = multierror.Append(writeErrs, err)
				continue
			}

			formatted, err := formatDocument(skill, original, config, mdConfig)
			if err != nil {
				presenter.Warning(fmt.Sprintf("Skipping %s: %v", skill.SkillFile, err))
				continue
			}
			if string(formatted) == string(original) {
				continue
			}
			changed++

			switch {
			case config.Diff:
				fmt.Print(udiff.Unified(skill.SkillFile, skill.SkillFile+" (formatted)", string(original), string(formatted)))
			case config.Check:
				presenter.Info(fmt.Sprintf("Would format: %s", skill.SkillFile))
			default:
				if err := osutil.WriteFileAtomic(skill.SkillFile, formatted, 0o644); err != nil {
					writeErrs = multierror.Append(writeErrs, err)
					continue
				}
				presenter.Info(fmt.Sprintf("Formatted: %s", skill.SkillFile))
			}
		}

		if err := writeErrs.ErrorOrNil(); err != nil {
			presenter.Error(err, "Some files could not be formatted")
			os.Exit(1)
		}

		if config.Check || config.Diff {
			if changed > 0 {
				presenter.Warning(fmt.Sprintf("%d file(s) would be formatted", changed))
				os.Exit(exitFmtChanges)
			}
			return
		}
		presenter.Success(fmt.Sprintf("Formatted %d file(s)", changed))
	},
}

// formatDocument applies frontmatter normalization first, then
// markdown fixes to the body, so the canonical header is never touched
// by the markdown pass.
func formatDocument(skill *skills.Skill, original []byte, config *FmtConfig, mdConfig *markdown.Config) ([]byte, error) {
	content := original

	if !config.NoFrontmatter {
		normalized, err := skills.Normalize(skill, content)
		if err != nil {
			return nil, err
		}
		content = normalized
	}

	if !config.NoMdlint {
		header, body, ok := skills.SplitDocument(content)
		if ok {
			fixed := markdown.Format(body, mdConfig)
			content = []byte("---\n" + header + "---\n" + fixed)
		}
	}

	return content, nil
}

func getFmtConfigFromFlags(cmd *cobra.Command) *FmtConfig {
	config := NewFmtConfig()

	config.Check, _ = cmd.Flags().GetBool("check")
	config.Diff, _ = cmd.Flags().GetBool("diff")
	config.NoFrontmatter, _ = cmd.Flags().GetBool("no-frontmatter")
	config.NoMdlint, _ = cmd.Flags().GetBool("no-mdlint")
	config.Include, _ = cmd.Flags().GetStringSlice("include")
	config.Exclude, _ = cmd.Flags().GetStringSlice("exclude")
	config.MdlintConfig, _ = cmd.Flags().GetString("mdlint-config")

	config.SkillsDir, _ = cmd.Flags().GetString("skills-dir")
	if config.SkillsDir == "" {
		config.SkillsDir = viper.GetString("skills_dir")
	}

	return config
}

func init() {
	fmtCmd.Flags().Bool("check", false, "Do not write; exit 2 if changes are needed")
	fmtCmd.Flags().Bool("diff", false, "Print a unified diff instead of writing")
	fmtCmd.Flags().Bool("no-frontmatter", false, "Do not rewrite YAML frontmatter")
	fmtCmd.Flags().Bool("no-mdlint", false, "Do not apply markdown fixes")
	fmtCmd.Flags().StringSlice("include", nil, "Only format SKILL.md paths matching these globs")
	fmtCmd.Flags().StringSlice("exclude", nil, "Skip SKILL.md paths matching these globs")
	fmtCmd.Flags().String("skills-dir", "", "Explicit skills directory (overrides resolution)")
	fmtCmd.Flags().String("mdlint-config", "", "Markdown lint configuration file")
}
