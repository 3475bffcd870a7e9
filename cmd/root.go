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
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "0.3.0"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "jira-translator",
	Short: "Bilingual Korean/English translator for Jira tickets",
	Long: `Translates the summary, description, and reproduction steps of a Jira
ticket between Korean and English, producing bilingual field values that keep
the original text alongside the translation.

Credentials come from flags, a config file, or the environment:
JIRA_URL, JIRA_EMAIL, JIRA_API_TOKEN, OPENAI_API_KEY, OPENAI_MODEL.

Use "jira-translator translate --help" for translation options.`,
	Version: version,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ./jira-translator.yaml)")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("jira-translator")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.BindEnv("jira.url", "JIRA_URL")
	viper.BindEnv("jira.email", "JIRA_EMAIL")
	viper.BindEnv("jira.api_token", "JIRA_API_TOKEN")
	viper.BindEnv("openai.api_key", "OPENAI_API_KEY")
	viper.BindEnv("openai.base_url", "OPENAI_BASE_URL")
	viper.BindEnv("openai.model", "OPENAI_MODEL")
	viper.SetDefault("openai.model", "gpt-5.2")
	viper.SetDefault("glossary.dir", "glossaries")

	// A missing config file is fine; the environment is enough.
	_ = viper.ReadInConfig()
}
