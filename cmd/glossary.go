/*
Copyright © 2025 The jira-translator authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Hyunsang-coder/jira-translator/internal/glossary"
)

var glossaryCmd = &cobra.Command{
	Use:   "glossary",
	Short: "Inspect project glossary files",
	Long: `Inspect the terminology glossaries applied during translation.

Glossaries pin project-specific terms (character names, item names, internal
vocabulary) to fixed translations in both directions.`,
}

var (
	glossaryCheckText string
	glossaryCheckName string
)

var glossaryCheckCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Parse a glossary file and list its terms",
	Long: `Parse a glossary file, report how many terms it holds, and list them.

With --text, only the terms that would be selected for translating that text
are listed, which is the same string-matching pass the translate command runs.

Example:
  jira-translator glossary check glossaries/pubg_glossary.json --text "블루존 damage"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := glossary.Load(args[0], glossaryCheckName)
		if err != nil {
			return fmt.Errorf("failed to load glossary: %w", err)
		}

		duplicates := 0
		for _, term := range table.Terms {
			if term.ID != term.En {
				duplicates++
			}
		}

		terms := table.Terms
		if glossaryCheckText != "" {
			terms = table.SelectCandidates([]string{glossaryCheckText})
			fmt.Printf("%d of %d term(s) match the given text\n", len(terms), len(table.Terms))
		} else {
			fmt.Printf("%d term(s)\n", len(table.Terms))
		}
		if duplicates > 0 {
			fmt.Printf("%d duplicate English key(s) kept with internal suffixes\n", duplicates)
		}

		if len(terms) == 0 {
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "EN\tKO\tNOTE\tCATEGORY")
		for _, term := range terms {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", term.En, term.Ko, term.Note, term.Category)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(glossaryCmd)

	glossaryCheckCmd.Flags().StringVar(&glossaryCheckText, "text", "", "Only list terms matching this text")
	glossaryCheckCmd.Flags().StringVar(&glossaryCheckName, "name", "", "Display name used in the report")

	glossaryCmd.AddCommand(glossaryCheckCmd)
}
