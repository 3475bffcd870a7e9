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
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Hyunsang-coder/jira-translator/internal/engine"
	"github.com/Hyunsang-coder/jira-translator/internal/jira"
	"github.com/Hyunsang-coder/jira-translator/internal/translator"
	"github.com/Hyunsang-coder/jira-translator/internal/validator"
)

var (
	jiraURL      string
	jiraEmail    string
	jiraAPIToken string

	openaiKey     string
	openaiBaseURL string
	openaiModel   string

	translateFields []string
	targetLang      string
	glossaryDir     string
	glossaryFile    string
	performUpdate   bool
	maxRetries      int
	strictSchema    bool
)

var translateCmd = &cobra.Command{
	Use:   "translate <issue-key-or-url>",
	Short: "Translate a Jira ticket into a bilingual version",
	Long: `Translate the summary, description, and reproduction steps of a Jira
ticket. The translation direction is detected from the ticket content:
Korean tickets become Korean/English, English tickets become English/Korean.
Fields that are already bilingual are left untouched.

The argument is an issue key ("PUBG-1234") or a browse URL
("https://company.atlassian.net/browse/PUBG-1234"). A bare key requires the
Jira site URL via --jira-url, the config file, or JIRA_URL.

By default the result is printed as a dry run; pass --update to write the
bilingual values back to the ticket.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		baseURL, issueKey, err := resolveIssue(args[0])
		if err != nil {
			return err
		}

		email := orConfig(jiraEmail, "jira.email")
		token := orConfig(jiraAPIToken, "jira.api_token")
		apiKey := orConfig(openaiKey, "openai.api_key")
		switch {
		case email == "":
			return fmt.Errorf("jira email is required (--email, config jira.email, or JIRA_EMAIL)")
		case token == "":
			return fmt.Errorf("jira API token is required (--api-token, config jira.api_token, or JIRA_API_TOKEN)")
		case apiKey == "":
			return fmt.Errorf("OpenAI API key is required (--openai-key, config openai.api_key, or OPENAI_API_KEY)")
		}

		model := orConfig(openaiModel, "openai.model")
		provider := translator.NewOpenAIProvider(apiKey, orConfig(openaiBaseURL, "openai.base_url"), model, strictSchema)
		batch := translator.New(provider, translator.Config{Retries: maxRetries})
		client := jira.NewClient(baseURL, email, token)

		eng := engine.New(client, batch, provider, validator.New(), orConfig(glossaryDir, "glossary.dir"))

		fmt.Fprintf(os.Stderr, "Translating %s with %s\n", issueKey, model)

		result, err := eng.Run(context.Background(), issueKey, engine.Options{
			Fields:        translateFields,
			TargetLang:    targetLang,
			GlossaryPath:  glossaryFile,
			PerformUpdate: performUpdate,
		})
		if result != nil {
			printResult(result)
		}
		if err != nil {
			return err
		}
		if result != nil && len(result.Fields) == 0 {
			fmt.Println("Nothing to translate: the requested fields are empty.")
		}
		return nil
	},
}

// resolveIssue accepts a bare issue key or a browse URL. A URL carries its
// own site base; a bare key needs one from configuration.
func resolveIssue(ref string) (baseURL, issueKey string, err error) {
	if jira.IsIssueKey(ref) {
		baseURL = strings.TrimSpace(orConfig(jiraURL, "jira.url"))
		if baseURL == "" {
			return "", "", fmt.Errorf("jira URL is required for a bare issue key (--jira-url, config jira.url, or JIRA_URL)")
		}
		return baseURL, strings.ToUpper(ref), nil
	}
	return jira.ParseIssueURL(ref)
}

// orConfig prefers the flag value over the viper-resolved config/env value.
func orConfig(flagValue, key string) string {
	if flagValue != "" {
		return flagValue
	}
	return viper.GetString(key)
}

func printResult(result *engine.Result) {
	fmt.Printf("Issue %s (project %s): %s -> %s\n",
		result.IssueKey, result.ProjectKey, result.SourceLang, result.TargetLang)

	for _, fr := range result.Fields {
		switch fr.Status {
		case engine.FieldTranslated:
			fmt.Printf("  %s: translated\n", fr.Field)
		case engine.FieldSkipped:
			fmt.Printf("  %s: skipped (already bilingual or empty)\n", fr.Field)
		case engine.FieldFailed:
			fmt.Printf("  %s: FAILED: %v\n", fr.Field, fr.Err)
		}
		for _, warning := range fr.Warnings {
			fmt.Fprintf(os.Stderr, "  warning: %s: %s\n", fr.Field, warning)
		}
	}

	if result.Updated {
		fmt.Printf("Updated %d field(s) on %s\n", len(result.Payload), result.IssueKey)
		return
	}
	if len(result.Payload) > 0 {
		fmt.Println("\nDry run. New field values (pass --update to apply):")
		for field, value := range result.Payload {
			fmt.Printf("\n--- %s ---\n%s\n", field, value)
		}
	}
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVar(&jiraURL, "jira-url", "", "Jira site URL, e.g. https://company.atlassian.net")
	translateCmd.Flags().StringVar(&jiraEmail, "email", "", "Jira account email")
	translateCmd.Flags().StringVar(&jiraAPIToken, "api-token", "", "Jira API token")

	translateCmd.Flags().StringVar(&openaiKey, "openai-key", "", "OpenAI API key")
	translateCmd.Flags().StringVar(&openaiBaseURL, "openai-url", "", "OpenAI-compatible base URL (default public API)")
	translateCmd.Flags().StringVarP(&openaiModel, "model", "m", "", "Model name (default gpt-5.2)")

	translateCmd.Flags().StringSliceVarP(&translateFields, "fields", "f", nil, "Fields to translate (default summary,description and the project steps field)")
	translateCmd.Flags().StringVarP(&targetLang, "target", "t", "", "Force target language: ko or en (default auto-detect)")
	translateCmd.Flags().StringVar(&glossaryDir, "glossary-dir", "", "Directory holding the project glossary files")
	translateCmd.Flags().StringVar(&glossaryFile, "glossary", "", "Glossary file overriding the per-project default")
	translateCmd.Flags().BoolVarP(&performUpdate, "update", "u", false, "Write the bilingual values back to the ticket")
	translateCmd.Flags().IntVar(&maxRetries, "max-retries", 2, "Batch re-attempts after the first request")
	translateCmd.Flags().BoolVar(&strictSchema, "strict-schema", true, "Request schema-validated structured output")
}
