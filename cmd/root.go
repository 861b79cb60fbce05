/*
Copyright © 2025 Yago Veloso

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
)

var version = "0.3.0"

var rootCmd = &cobra.Command{
	Use:   "potrans",
	Short: "Bulk PO catalog translator",
	Long: `Bulk-translate pending entries of a gettext PO catalog through a
pluggable translation provider, respecting provider rate limits and
persisting progress after every translated entry.

Supported providers: Google Cloud Translation, OpenAI-compatible
(OpenAI, OpenRouter, Groq, custom), Ollama, MyMemory.

Use "potrans translate --help" for translation options.`,
	Version: version,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
