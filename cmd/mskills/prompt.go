package main

import (
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/mskills/pkg/registry"
	"github.com/jingkaihe/mskills/pkg/skills"
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print an <available_skills> block for agent system prompts",
	Long: `Print the installed skills as an <available_skills> XML block that can be
pasted into an agent's system prompt. Invalid skills are skipped with a warning.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		list, err := current.skills.SkillsWithMetadata(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprint(current.out.Writer(), renderPrompt(list))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(promptCmd)
}

func renderPrompt(list []registry.SkillWithMetadata) string {
	var b strings.Builder
	b.WriteString("<available_skills>\n")
	for _, s := range list {
		b.WriteString("  <skill>\n")
		writeElement(&b, "name", s.Metadata.Name)
		writeElement(&b, "description", s.Metadata.Description)
		writeElement(&b, "location", filepath.Join(s.Path, skills.DescriptorFileName))
		b.WriteString("  </skill>\n")
	}
	b.WriteString("</available_skills>\n")
	return b.String()
}

func writeElement(b *strings.Builder, tag, value string) {
	b.WriteString("    <" + tag + ">")
	_ = xml.EscapeText(b, []byte(value))
	b.WriteString("</" + tag + ">\n")
}
